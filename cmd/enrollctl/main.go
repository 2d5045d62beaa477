package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "enrollctl",
		Short:         "Offline tools for course enrollment data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDiffCmd(), newLowerCmd(), newTokenCmd())
	return root
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/coursedesk-api/internal/enroll"
	"github.com/noah-isme/coursedesk-api/internal/models"
)

type diffOptions struct {
	existing string
	pending  string
	courseID string
	asJSON   bool
}

func newDiffCmd() *cobra.Command {
	opts := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Classify pending enroll rows against an existing roster",
		Long: `Reads two files in the bulk enroll layout (Section, Team, Name, Email, Comments)
and prints whether each pending row is NEW, UNCHANGED or CHANGED.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiff(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.existing, "existing", "", "file with the course's current students")
	cmd.Flags().StringVar(&opts.pending, "pending", "", "file with the rows to enroll")
	cmd.Flags().StringVar(&opts.courseID, "course", "offline", "course id stamped on records")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	_ = cmd.MarkFlagRequired("existing")
	_ = cmd.MarkFlagRequired("pending")
	return cmd
}

func runDiff(out io.Writer, opts *diffOptions) error {
	existingRows, err := readRows(opts.existing)
	if err != nil {
		return err
	}
	pendingRows, err := readRows(opts.pending)
	if err != nil {
		return err
	}

	existing := make([]enroll.Record, 0, len(existingRows))
	for _, r := range existingRows {
		record := r.Record(opts.courseID)
		record.JoinState = models.JoinStateJoined
		existing = append(existing, record)
	}
	results := enroll.Reconcile(enroll.Records(opts.courseID, pendingRows), existing)

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Results []enroll.Result `json:"results"`
			Summary enroll.Summary  `json:"summary"`
		}{results, enroll.Summarize(results)})
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tSTATUS\tCHANGED FIELDS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Email, r.Status, strings.Join(r.Mismatch, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	s := enroll.Summarize(results)
	_, err = fmt.Fprintf(out, "\n%d new, %d unchanged, %d changed\n", s.New, s.Unchanged, s.Changed)
	return err
}

func readRows(path string) ([]enroll.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := enroll.ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func newLowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lower <text>",
		Short: "Lower-case the first letter of text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), enroll.UnCapitalizeFirstLetter(args[0]))
			return err
		},
	}
}

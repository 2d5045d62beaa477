package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/service"
	"github.com/noah-isme/coursedesk-api/pkg/config"
)

type tokenOptions struct {
	googleID string
	email    string
	name     string
	role     string
	ttl      time.Duration
}

func newTokenCmd() *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runToken(cmd, cfg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.googleID, "google-id", "", "subject google id")
	cmd.Flags().StringVar(&opts.email, "email", "", "subject email")
	cmd.Flags().StringVar(&opts.name, "name", "", "subject display name")
	cmd.Flags().StringVar(&opts.role, "role", string(models.RoleAdmin), "ADMIN, INSTRUCTOR or STUDENT")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION)")
	_ = cmd.MarkFlagRequired("google-id")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runToken(cmd *cobra.Command, cfg *config.Config, opts *tokenOptions) error {
	expiry := cfg.JWT.Expiration
	if opts.ttl > 0 {
		expiry = opts.ttl
	}
	auth := service.NewAuthService(validator.New(), zap.NewNop(), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: expiry,
		Issuer:            cfg.JWT.Issuer,
	})
	issued, err := auth.IssueToken(service.TokenSubject{
		GoogleID: opts.googleID,
		Email:    opts.email,
		Name:     opts.name,
		Role:     models.UserRole(opts.role),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), issued.AccessToken)
	return err
}

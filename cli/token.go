package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"videoninja/config"
	"videoninja/handlers"
)

type TokenOptions struct {
	Subject string
	TTL     time.Duration
}

func NewTokenCommand() *cobra.Command {
	opts := &TokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Subject, "subject", "", "Subject the token identifies")
	flags.DurationVar(&opts.TTL, "ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func runToken(opts *TokenOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set, the API accepts requests without tokens")
	}

	token, err := handlers.IssueToken(cfg.JWTSecret, opts.Subject, opts.TTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aryansondharva/Aura/internal/app"
	httpMW "github.com/aryansondharva/Aura/internal/http/middleware"
)

func tokenCmd() *cobra.Command {
	var owner, email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET_KEY (development use)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.LoadDotEnv()
			secret := app.LoadConfig().JWTSecretKey
			if secret == "" {
				return fmt.Errorf("JWT_SECRET_KEY is not set")
			}
			id := uuid.New()
			if owner != "" {
				parsed, err := uuid.Parse(owner)
				if err != nil {
					return fmt.Errorf("invalid --owner: %w", err)
				}
				id = parsed
			}
			tok, err := httpMW.IssueToken(secret, id, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id; empty generates one")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

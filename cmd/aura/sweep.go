package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aryansondharva/Aura/internal/app"
)

func sweepCmd() *cobra.Command {
	var owner string
	var email string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reset overdue topics once, for one owner or for everyone",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if owner == "" {
				res, err := a.Services.Review.SweepAll(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "owners=%d topics_reset=%d\n", res.Owners, res.Topics)
				return err
			}
			ownerID, err := uuid.Parse(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			out, err := a.Services.Review.Sweep(cmd.Context(), ownerID, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topics_reset=%d attempts_zeroed=%d\n", len(out.ResetTopicIDs), out.ZeroedAttempts)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id; empty sweeps every owner with overdue topics")
	cmd.Flags().StringVar(&email, "email", "", "address for the due-topics notice (single owner only)")
	return cmd
}

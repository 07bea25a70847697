package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/envutil"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

func predictCmd() *cobra.Command {
	var latest, avg, attempts, days float64
	var modelPath string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the days until next review for the given features",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := scheduler.NewPredictor(logger.Nop(), modelPath)
			fmt.Fprintln(cmd.OutOrStdout(), p.PredictNextReviewDays(latest, avg, attempts, days))
			return nil
		},
	}
	cmd.Flags().Float64Var(&latest, "latest", 0, "latest score (0-10)")
	cmd.Flags().Float64Var(&avg, "avg", 0, "average score (0-10)")
	cmd.Flags().Float64Var(&attempts, "attempts", 0, "number of attempts")
	cmd.Flags().Float64Var(&days, "days", 0, "days since the last attempt")
	cmd.Flags().StringVar(&modelPath, "model", envutil.String("SCHEDULER_MODEL_PATH", ""), "XGBoost JSON model; empty uses the heuristic")
	return cmd
}

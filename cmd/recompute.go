package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"estate-metrics/internal/service"
)

var (
	recomputeForce     bool
	recomputeLimit     int
	recomputeBatchSize int
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute listing metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dep, err := initDependencies()
		if err != nil {
			return err
		}
		defer dep.Close()

		result, err := dep.Service.Metrics.Recompute(context.Background(), service.RecomputeOptions{
			Force:     recomputeForce,
			Limit:     recomputeLimit,
			BatchSize: recomputeBatchSize,
		})
		if err != nil {
			return err
		}

		fmt.Printf("processed=%d created=%d updated=%d batches=%d\n",
			result.Processed, result.Created, result.Updated, result.Batches)
		return nil
	},
}

func init() {
	recomputeCmd.Flags().BoolVar(&recomputeForce, "force", false, "recompute every listing, not just those missing metrics")
	recomputeCmd.Flags().IntVar(&recomputeLimit, "limit", 0, "cap the number of listings processed (0 = all)")
	recomputeCmd.Flags().IntVar(&recomputeBatchSize, "batch-size", 0, "override the configured batch size")
	rootCmd.AddCommand(recomputeCmd)
}

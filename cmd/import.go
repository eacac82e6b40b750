package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"estate-metrics/internal/service"
)

var (
	importUpdateExisting bool
	importFromURL        string
)

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import listing dumps from a file, directory, or URL",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFromURL == "" && len(args) == 0 {
			return fmt.Errorf("either a path argument or --from-url is required")
		}

		dep, err := initDependencies()
		if err != nil {
			return err
		}
		defer dep.Close()

		ctx := context.Background()
		var result *service.ImportResult
		if importFromURL != "" {
			result, err = dep.Service.Importer.ImportURL(ctx, importFromURL, importUpdateExisting)
		} else {
			result, err = dep.Service.Importer.ImportPath(ctx, args[0], importUpdateExisting)
		}
		if err != nil {
			return err
		}

		fmt.Printf("created=%d updated=%d skipped=%d\n", result.Created, result.Updated, result.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importUpdateExisting, "update", false, "overwrite existing listings with re-imported data")
	importCmd.Flags().StringVar(&importFromURL, "from-url", "", "import a hosted JSON payload instead of a local path")
	rootCmd.AddCommand(importCmd)
}

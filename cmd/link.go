package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var linkLimit int

var linkCmd = &cobra.Command{
	Use:   "link-buildings",
	Short: "Link unassigned listings to buildings and refresh missing areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		dep, err := initDependencies()
		if err != nil {
			return err
		}
		defer dep.Close()

		ctx := context.Background()
		linked, err := dep.Service.Linker.LinkUnlinked(ctx, linkLimit)
		if err != nil {
			return err
		}
		areasUpdated, err := dep.Service.Linker.RefreshAreas(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("linked=%d areas_updated=%d\n", linked, areasUpdated)
		return nil
	},
}

func init() {
	linkCmd.Flags().IntVar(&linkLimit, "limit", 0, "cap the number of listings linked (0 = all)")
	rootCmd.AddCommand(linkCmd)
}

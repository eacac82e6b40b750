package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "estate-metrics",
	Short: "Real estate listings metrics aggregation and building linkage engine",
}

func Execute() error {
	return rootCmd.Execute()
}

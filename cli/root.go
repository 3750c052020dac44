package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "videoninja",
	Short:        "Record, play and merge videos",
	Long:         `videoninja merges two videos back to back under an optional soundtrack and keeps the results in a local media library. Run "serve" for the HTTP API or use the commands directly.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMergeCommand())
	rootCmd.AddCommand(NewRecordCommand())
	rootCmd.AddCommand(NewLibraryCommand())
	rootCmd.AddCommand(NewTokenCommand())
}

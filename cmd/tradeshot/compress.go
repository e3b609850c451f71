package main

import (
	"github.com/spf13/cobra"
)

var compressDays int

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Gzip rotated JSONL logs older than the retention period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		days := compressDays
		if days <= 0 {
			days = a.cfg.Retention.Days
		}
		compressed, err := a.store.CompressOlder(days)
		if err != nil {
			return err
		}
		if compressed == nil {
			compressed = []string{}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"days": days, "compressed": compressed})
	},
}

func init() {
	rootCmd.AddCommand(compressCmd)
	compressCmd.Flags().IntVar(&compressDays, "days", 0, "retention in days (default retention.days from config)")
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tradeshot/internal/eod"
)

var summaryDate string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Write the daily summary for a UTC date (default today)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		var path string
		day := time.Now().UTC()
		if summaryDate != "" {
			day, err = time.Parse("2006-01-02", summaryDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", summaryDate)
			}
			path, err = eod.SummarizeDay(day)
		} else {
			path, err = eod.SummarizeToday()
		}
		if err != nil {
			return err
		}

		out := map[string]any{"date": day.Format("2006-01-02"), "path": path}
		if path == "" {
			out["message"] = "no trades on this date"
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "date to summarize, YYYY-MM-DD")
}

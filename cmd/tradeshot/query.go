package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tradeshot/internal/tradelog"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the trade log, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		recs, err := a.processor.SearchLogs(query, searchLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"query":       query,
			"results":     recs,
			"total_found": len(recs),
		})
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recently logged trade",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.processor.LatestTrade()
		if errors.Is(err, tradelog.ErrNoTrades) {
			return printJSON(cmd.OutOrStdout(), map[string]any{"trade": nil, "message": err.Error()})
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), rec)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print win rate, PnL totals and history over the trade log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.processor.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, latestCmd, statsCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", tradelog.DefaultSearchLimit, "maximum number of results")
}

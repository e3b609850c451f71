package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tradeshot",
	Short: "Extract trades from trading screenshots into an append-only journal",
	Long: `tradeshot reads trading platform screenshots, recovers the trade they show
(ticker, direction, entry, exit, PnL), appends it to logs/trade_log.jsonl and
optionally emails a trade alert.

Example:
  tradeshot extract screenshots/ --send-email --workers 4
  tradeshot search NQ1! --limit 10`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeSystem()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownSystem(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to the YAML config file")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

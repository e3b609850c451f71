package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tradeshot/internal/store"
)

var (
	extractSendEmail bool
	extractBatch     bool
	extractWorkers   int
)

var extractCmd = &cobra.Command{
	Use:   "extract <image|dir>",
	Short: "Extract the trade shown in a screenshot, or in every screenshot of a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractSendEmail, "send-email", false, "email a trade alert when a PnL amount is found")
	extractCmd.Flags().BoolVar(&extractBatch, "batch", false, "treat the argument as a directory of screenshots")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "screenshots processed concurrently in batch mode (default from config)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	a, err := buildApp(ctx, nil, func(c *store.Config) {
		if extractWorkers > 0 {
			c.Pipeline.Workers = extractWorkers
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("not found: %s", path)
	}

	if extractBatch || info.IsDir() {
		batch, err := a.processor.ProcessBatch(ctx, path, extractSendEmail)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), batch); err != nil {
			return err
		}
		if batch.Fail > 0 {
			return fmt.Errorf("%d of %d screenshots failed", batch.Fail, batch.Total)
		}
		return nil
	}

	res := a.processor.ProcessSingle(ctx, path, extractSendEmail)
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

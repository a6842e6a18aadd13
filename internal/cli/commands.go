package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
)

// newSummaryCmd creates the summary command
func newSummaryCmd(client *hyperliquid.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <address>",
		Short: "Show the current account summary for a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := client.AccountSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(summary)
		},
	}
}

// newStatsCmd creates the stats command
func newStatsCmd(client *hyperliquid.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <address>",
		Short: "Show trading statistics for a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := client.TradingStats(cmd.Context(), args[0], startTimeFlag(cmd))
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
	addDaysFlag(cmd, 30)
	return cmd
}

// newEquityCmd creates the equity command
func newEquityCmd(client *hyperliquid.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equity <address>",
		Short: "Reconstruct the daily equity curve for a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := client.EquityHistory(cmd.Context(), args[0], startTimeFlag(cmd))
			if err != nil {
				return err
			}
			if table, _ := cmd.Flags().GetBool("table"); table {
				for _, point := range history {
					fmt.Printf("%s  %12s  %12s\n", point.Date, point.Pnl.StringFixed(2), point.RawPnl.StringFixed(2))
				}
				return nil
			}
			return printJSON(history)
		},
		Args: cobra.ExactArgs(1),
	}
	addDaysFlag(cmd, 90)
	cmd.Flags().Bool("table", false, "Print one date/pnl row per line instead of JSON")
	return cmd
}

// newFillsCmd creates the fills command
func newFillsCmd(client *hyperliquid.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fills <address>",
		Short: "List recent fills for a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fills, err := client.UserFills(cmd.Context(), args[0], startTimeFlag(cmd))
			if err != nil {
				return err
			}
			return printJSON(fills)
		},
	}
	addDaysFlag(cmd, 90)
	return cmd
}

func addDaysFlag(cmd *cobra.Command, defaultDays int) {
	cmd.Flags().IntP("days", "d", defaultDays, "How many days of history to query")
}

func startTimeFlag(cmd *cobra.Command) int64 {
	days, _ := cmd.Flags().GetInt("days")
	if days < 1 {
		days = 1
	}
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

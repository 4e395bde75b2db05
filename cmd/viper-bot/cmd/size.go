package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/risk"
)

var sizeCmd = &cobra.Command{
	Use:   "size SYMBOL ENTRY STOP",
	Short: "Compute a lot-rounded position size for a trade idea",
	Long: `Compute how many lots to trade for a given entry and stop loss.

The quantity risks at most the per-trade risk budget, rounds down to the
instrument's lot size and is clamped so total exposure stays under the
position value limit.

Example:
  viper-bot size NIFTY 22150 22050
  viper-bot size BANKNIFTY 47300 47100 --budget 3000`,
	Args: cobra.ExactArgs(3),
	RunE: runSize,
}

var sizeBudget float64

func init() {
	rootCmd.AddCommand(sizeCmd)
	sizeCmd.Flags().Float64Var(&sizeBudget, "budget", 0, "risk budget in rupees (default: risk-per-trade fraction of the position limit)")
}

func runSize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params := cfg.RiskParameters()

	symbol := args[0]
	var entry, stop float64
	if _, err := fmt.Sscanf(args[1], "%f", &entry); err != nil {
		return fmt.Errorf("parse entry price %q: %w", args[1], err)
	}
	if _, err := fmt.Sscanf(args[2], "%f", &stop); err != nil {
		return fmt.Errorf("parse stop loss %q: %w", args[2], err)
	}

	budget := sizeBudget
	if budget <= 0 {
		budget = params.DefaultBudget()
	}

	result, err := risk.Size(symbol, entry, stop, budget, params)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("POSITION SIZE " + symbol)
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Entry", fmt.Sprintf("%.2f", entry)},
		{"Stop Loss", fmt.Sprintf("%.2f", stop)},
		{"Risk Budget", fmt.Sprintf("₹%.2f", budget)},
		{"Per-Unit Risk", fmt.Sprintf("₹%.2f", result.PerUnitRisk)},
		{"Lots", result.Lots},
		{"Quantity", result.Quantity},
		{"Exposure", fmt.Sprintf("₹%.2f", result.Exposure)},
		{"Status", string(result.Status)},
	})
	t.Render()
	return nil
}

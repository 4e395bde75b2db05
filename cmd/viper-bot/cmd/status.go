package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/broker/kite"
	"github.com/sandyviper/kite-viper-bot/internal/marketdata/nse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display configuration, session, market and position status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SYSTEM STATUS")
	t.SetStyle(table.StyleRounded)

	configured := func(v string) string {
		if v != "" {
			return "✅ configured"
		}
		return "❌ missing"
	}
	t.AppendRows([]table.Row{
		{"📋 API Key", configured(cfg.Kite.APIKey)},
		{"📋 Access Token", configured(cfg.Kite.AccessToken)},
		{"📋 Telegram Bot", configured(cfg.Telegram.BotToken)},
		{"📋 Max Position Value", fmt.Sprintf("₹%.0f", cfg.Trading.MaxPositionValue)},
		{"📋 Risk Per Trade", fmt.Sprintf("%.1f%%", cfg.Trading.RiskPerTrade*100)},
		{"📋 Max Daily Loss", fmt.Sprintf("₹%.0f", cfg.Trading.MaxDailyLoss)},
	})
	t.AppendSeparator()

	// Broker session.
	auth := kite.NewAuth(cfg.Kite.APIKey, cfg.Kite.APISecret, cfg.Kite.AccessToken)
	authStatus := "❌ not authenticated"
	if err := auth.ValidateSession(cmd.Context()); err == nil {
		authStatus = "✅ authenticated"
	}
	t.AppendRow(table.Row{"🔐 Authentication", authStatus})

	// Exchange state.
	marketStatus := "⚪ unknown"
	session := ""
	if status, err := nse.NewClient().GetMarketStatus(); err == nil {
		session = status.Session
		if status.Open {
			marketStatus = "🟢 open"
		} else {
			marketStatus = "🔴 closed"
		}
	}
	t.AppendRow(table.Row{"🏛️ Market", marketStatus})
	if session != "" {
		t.AppendRow(table.Row{"🏛️ Session", session})
	}
	t.AppendSeparator()

	// Live positions when the session is valid.
	if auth.HasToken() {
		client := kite.NewClient(auth)
		if positions, err := client.GetPositions(cmd.Context()); err == nil {
			pnl := 0.0
			for _, p := range positions {
				pnl += p.PnL
			}
			t.AppendRows([]table.Row{
				{"💼 Open Positions", len(positions)},
				{"💼 Day P&L", fmt.Sprintf("₹%.2f", pnl)},
			})
		} else {
			t.AppendRow(table.Row{"💼 Positions", fmt.Sprintf("unavailable: %v", err)})
		}
		if margins, err := client.GetMargins(cmd.Context()); err == nil {
			t.AppendRow(table.Row{"💼 Margin Available", fmt.Sprintf("₹%.2f", margins.Available())})
		}
	}

	t.Render()
	return nil
}

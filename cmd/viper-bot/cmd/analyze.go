package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/broker/kite"
	"github.com/sandyviper/kite-viper-bot/internal/indicators"
	"github.com/sandyviper/kite-viper-bot/internal/marketdata/nse"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Show indicator and option chain readings for a symbol",
	Long: `Compute momentum indicators from daily candles and summarize the
option chain open interest structure.

Requires an authenticated Kite session for historical candles; the option
chain comes from the public NSE API.

Example:
  viper-bot analyze NIFTY --token 256265`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeToken string
	analyzeDays  int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeToken, "token", "256265", "Kite instrument token for historical candles")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 120, "lookback window in days")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := args[0]

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("ANALYSIS " + symbol)
	t.SetStyle(table.StyleRounded)

	// Indicators from daily candles.
	auth := kite.NewAuth(cfg.Kite.APIKey, cfg.Kite.APISecret, cfg.Kite.AccessToken)
	client := kite.NewClient(auth)

	to := time.Now()
	from := to.AddDate(0, 0, -analyzeDays)
	candles, err := client.GetHistorical(cmd.Context(), analyzeToken, "day", from, to)
	if err != nil {
		t.AppendRow(table.Row{"📈 Candles", fmt.Sprintf("unavailable: %v", err)})
	} else if len(candles) == 0 {
		t.AppendRow(table.Row{"📈 Candles", "no data in window"})
	} else {
		closes := make([]float64, len(candles))
		for i, c := range candles {
			closes[i] = c.Close
		}
		t.AppendRow(table.Row{"📈 Close", fmt.Sprintf("%.2f", closes[len(closes)-1])})

		if sma, err := indicators.SMA(closes, 20); err == nil {
			t.AppendRow(table.Row{"📈 SMA(20)", fmt.Sprintf("%.2f", sma[len(sma)-1])})
		}
		if ema, err := indicators.EMA(closes, 20); err == nil {
			t.AppendRow(table.Row{"📈 EMA(20)", fmt.Sprintf("%.2f", ema[len(ema)-1])})
		}
		if rsi, err := indicators.RSI(closes, 14); err == nil {
			t.AppendRow(table.Row{"📈 RSI(14)", fmt.Sprintf("%.1f", rsi[len(rsi)-1])})
		}
		if macd, signal, hist, err := indicators.MACD(closes, 12, 26, 9); err == nil {
			t.AppendRow(table.Row{"📈 MACD", fmt.Sprintf("%.2f / signal %.2f / hist %.2f",
				macd[len(macd)-1], signal[len(signal)-1], hist[len(hist)-1])})
		}
	}
	t.AppendSeparator()

	// Option chain structure.
	snap, err := nse.NewClient().GetSnapshot(symbol, 6)
	if err != nil {
		t.AppendRow(table.Row{"⛓️ Option Chain", fmt.Sprintf("unavailable: %v", err)})
	} else {
		ceSkew, peSkew := snap.Skew(2)
		t.AppendRows([]table.Row{
			{"⛓️ Spot", fmt.Sprintf("%.2f", snap.Spot)},
			{"⛓️ ATM Strike", snap.ATM},
			{"⛓️ Expiry", snap.Expiry},
			{"⛓️ PCR", fmt.Sprintf("%.2f", snap.PCR(6))},
			{"⛓️ OI Skew CE/PE", fmt.Sprintf("%.2f / %.2f", ceSkew, peSkew)},
		})
		if side, ok := snap.Supportive(); ok {
			t.AppendRow(table.Row{"⛓️ OI Structure", "supports " + side + " entries"})
		} else {
			t.AppendRow(table.Row{"⛓️ OI Structure", "not supportive"})
		}
	}

	t.Render()
	return nil
}

package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "viper-bot",
	Short: "An automated NSE options trading assistant for Zerodha Kite",
	Long: `Viper Bot is a trading assistant for Indian equity and index options.

It provides tools for:
  - Zerodha Kite Connect session management and order placement
  - NSE option chain snapshots with OI and PCR analytics
  - Risk-gated position sizing with lot rounding and exposure caps
  - Trade journaling to CSV, JSONL and SQLite with Excel day reports
  - Health, Prometheus metrics and watchdog alerting over Telegram`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	envFile  string
	riskFile string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to .env file with credentials")
	rootCmd.PersistentFlags().StringVar(&riskFile, "risk-file", "", "optional YAML file overriding risk limits and lot sizes")
}

// loadConfig seeds the environment from the .env file when present and
// builds the configuration, applying the risk file overlay if given.
func loadConfig() (*config.Config, error) {
	// A missing .env file is fine; credentials may come from the
	// real environment.
	_ = godotenv.Load(envFile)

	cfg := config.Load()
	if riskFile != "" {
		if err := cfg.ApplyRiskFile(riskFile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandyviper/kite-viper-bot/internal/risk"
)

// Config is the process-wide configuration, assembled once at startup from
// environment variables (optionally seeded from a .env file by the CLI) and
// an optional YAML risk file. It is treated as read-only afterwards.
type Config struct {
	Environment string
	LogLevel    string

	Kite struct {
		APIKey      string
		APISecret   string
		AccessToken string
	}

	Telegram struct {
		BotToken string
		ChatID   string
	}

	Trading struct {
		MaxPositionValue  float64
		RiskPerTrade      float64
		MaxDailyLoss      float64
		TradingHoursStart string
		TradingHoursEnd   string
		LotSizes          map[string]int
	}

	Journal struct {
		Dir    string
		DBPath string
	}

	Monitoring struct {
		HealthPort     int
		PrometheusPort int
		WatchInterval  time.Duration
	}
}

// NSE index lot sizes shipped as defaults; a YAML risk file can override or
// extend them when the exchange revises contract sizes.
func defaultLotSizes() map[string]int {
	return map[string]int{
		"NIFTY":      50,
		"BANKNIFTY":  15,
		"FINNIFTY":   40,
		"MIDCPNIFTY": 75,
		"SENSEX":     10,
		"BANKEX":     15,
	}
}

// Load builds the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Kite.APIKey = getEnv("KITE_API_KEY", "")
	cfg.Kite.APISecret = getEnv("KITE_API_SECRET", "")
	cfg.Kite.AccessToken = getEnv("KITE_ACCESS_TOKEN", "")

	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", "")

	cfg.Trading.MaxPositionValue = getEnvFloat("MAX_POSITION_SIZE", 100000)
	cfg.Trading.RiskPerTrade = getEnvFloat("RISK_PER_TRADE", 0.02)
	cfg.Trading.MaxDailyLoss = getEnvFloat("MAX_DAILY_LOSS", 5000)
	cfg.Trading.TradingHoursStart = getEnv("TRADING_HOURS_START", "09:15")
	cfg.Trading.TradingHoursEnd = getEnv("TRADING_HOURS_END", "15:30")
	cfg.Trading.LotSizes = defaultLotSizes()

	cfg.Journal.Dir = getEnv("JOURNAL_DIR", "logs")
	cfg.Journal.DBPath = getEnv("JOURNAL_DB", "logs/trades.db")

	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)
	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)
	cfg.Monitoring.WatchInterval = getEnvDuration("WATCH_INTERVAL", time.Minute)

	return cfg
}

// riskFile is the YAML shape of an optional risk overrides file.
type riskFile struct {
	MaxPositionValue float64        `yaml:"max_position_value"`
	RiskPerTrade     float64        `yaml:"risk_per_trade"`
	MaxDailyLoss     float64        `yaml:"max_daily_loss"`
	LotSizes         map[string]int `yaml:"lot_sizes"`
}

// ApplyRiskFile overlays trading limits and lot sizes from a YAML file.
// Zero-valued fields in the file leave the current value untouched.
func (c *Config) ApplyRiskFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read risk file: %w", err)
	}

	var rf riskFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse risk file %s: %w", path, err)
	}

	if rf.MaxPositionValue > 0 {
		c.Trading.MaxPositionValue = rf.MaxPositionValue
	}
	if rf.RiskPerTrade > 0 {
		c.Trading.RiskPerTrade = rf.RiskPerTrade
	}
	if rf.MaxDailyLoss > 0 {
		c.Trading.MaxDailyLoss = rf.MaxDailyLoss
	}
	for symbol, lot := range rf.LotSizes {
		if lot > 0 {
			c.Trading.LotSizes[symbol] = lot
		}
	}
	return nil
}

// RiskParameters converts the trading section into the read-only value the
// sizer consumes. One conversion at startup, no hidden global.
func (c *Config) RiskParameters() *risk.Parameters {
	lots := make(map[string]int, len(c.Trading.LotSizes))
	for k, v := range c.Trading.LotSizes {
		lots[k] = v
	}
	return &risk.Parameters{
		RiskPerTrade:     c.Trading.RiskPerTrade,
		MaxPositionValue: c.Trading.MaxPositionValue,
		MaxDailyLoss:     c.Trading.MaxDailyLoss,
		LotSizes:         lots,
	}
}

// Validate checks the fields the bot cannot run without.
func (c *Config) Validate() error {
	if c.Kite.APIKey == "" {
		return errors.New("KITE_API_KEY is required")
	}
	if c.Kite.APISecret == "" {
		return errors.New("KITE_API_SECRET is required")
	}
	if c.Trading.RiskPerTrade <= 0 || c.Trading.RiskPerTrade >= 1 {
		return fmt.Errorf("RISK_PER_TRADE must be in (0, 1), got %v", c.Trading.RiskPerTrade)
	}
	if c.Trading.MaxPositionValue <= 0 {
		return fmt.Errorf("MAX_POSITION_SIZE must be positive, got %v", c.Trading.MaxPositionValue)
	}
	if c.Trading.MaxDailyLoss <= 0 {
		return fmt.Errorf("MAX_DAILY_LOSS must be positive, got %v", c.Trading.MaxDailyLoss)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

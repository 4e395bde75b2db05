package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/broker/kite"
	"github.com/sandyviper/kite-viper-bot/internal/journal"
	"github.com/sandyviper/kite-viper-bot/internal/logger"
	"github.com/sandyviper/kite-viper-bot/internal/marketdata/nse"
	"github.com/sandyviper/kite-viper-bot/internal/monitoring"
	"github.com/sandyviper/kite-viper-bot/internal/notifications"
	"github.com/sandyviper/kite-viper-bot/internal/risk"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading assistant",
	Long: `Run the trading assistant with journaling, monitoring and alerts.

Requires Kite credentials and a fresh access token (see "viper-bot auth").
Serves a health endpoint and Prometheus metrics, validates the broker
session in the background, streams index ticks over the market websocket
and raises Telegram alerts when the watchdog finds trouble.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// NSE index instrument tokens for the default tick subscription.
var indexTokens = map[uint32]string{
	256265: "NIFTY 50",
	260105: "NIFTY BANK",
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(cfg.Journal.Dir)
	if err != nil {
		return fmt.Errorf("open logger: %w", err)
	}
	defer log.Close()
	log.Info("viper-bot %s starting (%s)", version, cfg.Environment)

	// Journal fans out to CSV, JSONL and SQLite.
	csvSink, err := journal.NewCSVSink(cfg.Journal.Dir)
	if err != nil {
		return fmt.Errorf("open csv journal: %w", err)
	}
	jsonlSink, err := journal.NewJSONLSink(cfg.Journal.Dir)
	if err != nil {
		return fmt.Errorf("open jsonl journal: %w", err)
	}
	sqliteSink, err := journal.NewSQLiteSink(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite journal: %w", err)
	}
	trades := journal.New(csvSink, jsonlSink, sqliteSink)
	defer trades.Close()

	// Broker client.
	auth := kite.NewAuth(cfg.Kite.APIKey, cfg.Kite.APISecret, cfg.Kite.AccessToken)
	client := kite.NewClient(auth)
	client.SetJournal(trades)
	client.SetLogger(log)

	if err := auth.ValidateSession(ctx); err != nil {
		return fmt.Errorf("broker session invalid, run \"viper-bot auth\": %w", err)
	}

	params := cfg.RiskParameters()
	book := risk.NewBook(params)

	var notifier notifications.Notifier = notifications.NopNotifier{}
	if cfg.Telegram.BotToken != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	health := monitoring.NewHealthChecker()
	health.SetConnected(true)

	// Background session validation. Tokens expire daily; a flip to
	// invalid alerts the operator.
	refresher := kite.NewRefresher(auth, cfg.Monitoring.WatchInterval, log)
	refresher.OnChange(func(valid bool) {
		health.SetConnected(valid)
		if !valid {
			if err := notifier.SendAlert("error", "Kite session expired, run viper-bot auth"); err != nil {
				log.Error("notify session expiry: %v", err)
			}
		}
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	watchdog := monitoring.NewWatchdog(cfg.Monitoring.WatchInterval, book, params, refresher, log)
	watchdog.OnAlert(func(a monitoring.Alert) {
		level := "warning"
		if a.Severity == monitoring.SeverityCritical {
			level = "error"
		}
		if err := notifier.SendAlert(level, fmt.Sprintf("[%s] %s", a.Type, a.Message)); err != nil {
			log.Error("notify alert: %v", err)
		}
	})
	watchdog.Start(ctx)
	defer watchdog.Stop()

	healthSrv := serve(cfg.Monitoring.HealthPort, "/health", health, log)
	metricsSrv := serve(cfg.Monitoring.PrometheusPort, "/metrics", monitoring.NewMetricsHandler(), log)
	defer shutdown(healthSrv)
	defer shutdown(metricsSrv)

	// Market feed: index ticks drive the price gauges and tick
	// freshness in the health report.
	ticker := kite.NewTicker(auth)
	if err := ticker.Connect(ctx); err != nil {
		log.Error("market websocket unavailable: %v", err)
		health.SetConnected(false)
	} else {
		defer ticker.Close()
		tokens := make([]uint32, 0, len(indexTokens))
		for token := range indexTokens {
			tokens = append(tokens, token)
		}
		if err := ticker.Subscribe(tokens...); err != nil {
			log.Error("subscribe ticks: %v", err)
		}
		go func() {
			for tick := range ticker.Ticks() {
				health.RecordTick(tick.LastPrice)
				if symbol, ok := indexTokens[tick.InstrumentToken]; ok {
					monitoring.UpdatePrice(symbol, tick.LastPrice)
				}
			}
		}()
	}

	if status, err := nse.NewClient().GetMarketStatus(); err == nil {
		log.Info("market session %s (open=%v)", status.Session, status.Open)
	} else {
		log.Warning("market status unavailable: %v", err)
	}

	log.Info("viper-bot running: health :%d, metrics :%d", cfg.Monitoring.HealthPort, cfg.Monitoring.PrometheusPort)
	if err := notifier.SendAlert("success", "Viper Bot started"); err != nil {
		log.Error("notify startup: %v", err)
	}

	<-ctx.Done()
	log.Info("shutdown signal received")
	if err := notifier.SendAlert("warning", "Viper Bot stopping"); err != nil {
		log.Error("notify shutdown: %v", err)
	}
	return nil
}

func serve(port int, path string, handler http.Handler, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server on %s: %v", srv.Addr, err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

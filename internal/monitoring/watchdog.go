package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sandyviper/kite-viper-bot/internal/logger"
	"github.com/sandyviper/kite-viper-bot/internal/risk"
)

// Alert severities.
const (
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Alert is one watchdog finding.
type Alert struct {
	Timestamp time.Time
	Type      string // SYSTEM, TRADING or SESSION
	Message   string
	Severity  string
}

// SessionStatus reports broker session health; satisfied by the token
// refresher.
type SessionStatus interface {
	Status() (lastCheck time.Time, valid, running bool)
}

// Watchdog periodically checks process resources, trading risk and the
// broker session, and pushes alerts through registered callbacks.
type Watchdog struct {
	interval time.Duration
	book     *risk.Book
	params   *risk.Parameters
	session  SessionStatus
	log      *logger.Logger

	goroutineThreshold int
	heapThresholdMB    uint64

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastCheck time.Time
	alerts    []Alert
	callbacks []func(Alert)
}

func NewWatchdog(interval time.Duration, book *risk.Book, params *risk.Parameters, session SessionStatus, log *logger.Logger) *Watchdog {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watchdog{
		interval:           interval,
		book:               book,
		params:             params,
		session:            session,
		log:                log,
		goroutineThreshold: 500,
		heapThresholdMB:    512,
	}
}

// OnAlert registers a callback invoked for every alert raised.
func (w *Watchdog) OnAlert(fn func(Alert)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start launches the check loop. Calling Start twice is a no-op.
func (w *Watchdog) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.loop(ctx)

	if w.log != nil {
		w.log.Info("watchdog started (interval %s)", w.interval)
	}
}

// Stop terminates the loop and waits for it to exit.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.running = false
	w.mu.Unlock()

	cancel()
	<-done

	if w.log != nil {
		w.log.Info("watchdog stopped")
	}
}

func (w *Watchdog) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check runs all health checks once.
func (w *Watchdog) Check() {
	w.checkResources()
	w.checkTrading()
	w.checkSession()

	w.mu.Lock()
	w.lastCheck = time.Now()
	w.mu.Unlock()
}

func (w *Watchdog) checkResources() {
	goroutines := runtime.NumGoroutine()
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	heapMB := mem.HeapAlloc / (1 << 20)

	if goroutines > w.goroutineThreshold {
		w.raise("SYSTEM", fmt.Sprintf("goroutine count high: %d", goroutines), SeverityWarning)
	}
	if heapMB > w.heapThresholdMB {
		w.raise("SYSTEM", fmt.Sprintf("heap usage high: %d MB", heapMB), SeverityWarning)
	}
}

func (w *Watchdog) checkTrading() {
	if w.book == nil || w.params == nil {
		return
	}

	summary := w.book.Summary()
	UpdateRisk(summary.RealizedPnL, summary.RiskUtilization)

	if !risk.WithinDailyLossLimit(summary.RealizedPnL, w.params) {
		w.raise("TRADING",
			fmt.Sprintf("daily loss limit breached: %.2f (limit %.2f)", summary.RealizedPnL, w.params.MaxDailyLoss),
			SeverityCritical)
	}
	if summary.RiskUtilization > 90 {
		w.raise("TRADING",
			fmt.Sprintf("risk utilization high: %.1f%%", summary.RiskUtilization),
			SeverityWarning)
	}
}

func (w *Watchdog) checkSession() {
	if w.session == nil {
		return
	}
	lastCheck, valid, running := w.session.Status()
	if running && !lastCheck.IsZero() && !valid {
		w.raise("SESSION", "broker session invalid, manual re-authentication required", SeverityCritical)
	}
}

func (w *Watchdog) raise(alertType, message, severity string) {
	alert := Alert{
		Timestamp: time.Now(),
		Type:      alertType,
		Message:   message,
		Severity:  severity,
	}

	w.mu.Lock()
	w.alerts = append(w.alerts, alert)
	callbacks := append([]func(Alert){}, w.callbacks...)
	w.mu.Unlock()

	if w.log != nil {
		w.log.Warning("ALERT [%s] %s", alertType, message)
	}
	RecordError(alertType)

	for _, fn := range callbacks {
		fn(alert)
	}
}

// RecentAlerts returns alerts raised within the given window.
func (w *Watchdog) RecentAlerts(window time.Duration) []Alert {
	cutoff := time.Now().Add(-window)

	w.mu.Lock()
	defer w.mu.Unlock()

	var recent []Alert
	for _, a := range w.alerts {
		if a.Timestamp.After(cutoff) {
			recent = append(recent, a)
		}
	}
	return recent
}

// ClearAlerts drops the alert history.
func (w *Watchdog) ClearAlerts() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alerts = nil
}

// Status summarizes the watchdog state for the status command.
func (w *Watchdog) Status() (lastCheck time.Time, running bool, alertCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastCheck, w.running, len(w.alerts)
}

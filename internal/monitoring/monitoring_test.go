package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandyviper/kite-viper-bot/internal/risk"
)

func TestHealthCheckerStates(t *testing.T) {
	h := NewHealthChecker()

	// Fresh checker has no connection yet.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetConnected(true)
	h.RecordTick(22150.35)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 22150.35, status.LastPrice)
	assert.True(t, status.IsConnected)

	h.RecordError("order rejected")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	h.ClearErrors()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	RecordTrade("NIFTY24SEP22000CE", "BUY", 6250)
	UpdatePrice("NIFTY 50", 22150.35)
	UpdateRisk(-1200, 35)
	RecordError("TRADING")

	rec := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "viper_bot_trades_total")
	assert.Contains(t, body, "viper_bot_last_price")
	assert.Contains(t, body, "viper_bot_daily_pnl")
}

type fakeSession struct {
	valid bool
}

func (f *fakeSession) Status() (time.Time, bool, bool) {
	return time.Now(), f.valid, true
}

func testParams() *risk.Parameters {
	return &risk.Parameters{
		RiskPerTrade:     0.02,
		MaxPositionValue: 100000,
		MaxDailyLoss:     5000,
		LotSizes:         map[string]int{"NIFTY": 50},
	}
}

func TestWatchdogRaisesTradingAlert(t *testing.T) {
	params := testParams()
	book := risk.NewBook(params)

	// Realize a loss past the daily limit.
	id := book.Add("NIFTY", 50, 200, risk.SideBuy, "expiry")
	_, err := book.Close(id, 80)
	require.NoError(t, err)
	require.False(t, book.CanTrade())

	w := NewWatchdog(time.Minute, book, params, &fakeSession{valid: true}, nil)

	var alerts []Alert
	w.OnAlert(func(a Alert) { alerts = append(alerts, a) })
	w.Check()

	require.NotEmpty(t, alerts)
	assert.Equal(t, "TRADING", alerts[0].Type)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)

	lastCheck, running, count := w.Status()
	assert.False(t, lastCheck.IsZero())
	assert.False(t, running)
	assert.Equal(t, len(alerts), count)
}

func TestWatchdogSessionAlert(t *testing.T) {
	params := testParams()
	w := NewWatchdog(time.Minute, risk.NewBook(params), params, &fakeSession{valid: false}, nil)
	w.Check()

	recent := w.RecentAlerts(time.Minute)
	require.Len(t, recent, 1)
	assert.Equal(t, "SESSION", recent[0].Type)

	w.ClearAlerts()
	assert.Empty(t, w.RecentAlerts(time.Minute))
}

func TestWatchdogQuietWhenHealthy(t *testing.T) {
	params := testParams()
	w := NewWatchdog(time.Minute, risk.NewBook(params), params, &fakeSession{valid: true}, nil)
	w.Check()
	assert.Empty(t, w.RecentAlerts(time.Minute))
}

func TestWatchdogStartStop(t *testing.T) {
	params := testParams()
	w := NewWatchdog(5*time.Millisecond, risk.NewBook(params), params, &fakeSession{valid: true}, nil)

	w.Start(context.Background())
	_, running, _ := w.Status()
	assert.True(t, running)

	time.Sleep(15 * time.Millisecond)
	w.Stop()
	_, running, _ = w.Status()
	assert.False(t, running)
}

package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viper_bot_trades_total",
			Help: "Total number of orders placed",
		},
		[]string{"symbol", "side"},
	)

	orderValue = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viper_bot_order_value",
			Help:    "Distribution of order notional values",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
		},
		[]string{"symbol"},
	)

	dailyPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "viper_bot_daily_pnl",
			Help: "Realized profit and loss for the current day",
		},
	)

	riskUtilization = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "viper_bot_risk_utilization",
			Help: "Percent of the position value limit committed",
		},
	)

	// Market data metrics
	lastPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "viper_bot_last_price",
			Help: "Last traded price per instrument",
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viper_bot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(orderValue)
	prometheus.MustRegister(dailyPnL)
	prometheus.MustRegister(riskUtilization)
	prometheus.MustRegister(lastPrice)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordTrade records one placed order.
func RecordTrade(symbol, side string, value float64) {
	tradesTotal.WithLabelValues(symbol, side).Inc()
	orderValue.WithLabelValues(symbol).Observe(value)
}

// UpdatePrice updates the last traded price gauge.
func UpdatePrice(symbol string, price float64) {
	lastPrice.WithLabelValues(symbol).Set(price)
}

// UpdateRisk updates the daily P&L and utilization gauges.
func UpdateRisk(pnl, utilization float64) {
	dailyPnL.Set(pnl)
	riskUtilization.Set(utilization)
}

// RecordError records an error by category.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

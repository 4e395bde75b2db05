// Package journal persists trade records. A Journal fans every record out
// to the configured sinks: daily CSV and JSON-lines files for quick
// inspection, SQLite for queries, and an on-demand Excel day report.
package journal

import (
	"fmt"
	"time"

	"github.com/sandyviper/kite-viper-bot/pkg/id"
)

// TradeRecord is one executed (or attempted) trade.
type TradeRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Action     string    `json:"action"` // BUY or SELL
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	OrderID    string    `json:"order_id"`
	Strategy   string    `json:"strategy"`
	PnL        float64   `json:"pnl"`
	Commission float64   `json:"commission"`
	Status     string    `json:"status"`
}

// Sink receives trade records.
type Sink interface {
	Record(TradeRecord) error
	Close() error
}

// Journal fans records out to every sink. A sink failure aborts the write
// and is returned to the caller; nothing is swallowed.
type Journal struct {
	sinks []Sink
}

func New(sinks ...Sink) *Journal {
	return &Journal{sinks: sinks}
}

// Record stamps the trade with an id and timestamp when missing and writes
// it to all sinks.
func (j *Journal) Record(t TradeRecord) error {
	if t.ID == "" {
		t.ID = id.New()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	for _, s := range j.sinks {
		if err := s.Record(t); err != nil {
			return fmt.Errorf("journal sink: %w", err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	var firstErr error
	for _, s := range j.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// dayStamp is the suffix used for daily files, e.g. trades_20250116.csv.
func dayStamp(t time.Time) string {
	return t.Format("20060102")
}

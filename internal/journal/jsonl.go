package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONLSink appends one JSON object per line to a daily file. Line-oriented
// JSON keeps appends atomic-ish and cheap, unlike rewriting a JSON array on
// every trade.
type JSONLSink struct {
	mu  sync.Mutex
	dir string
}

func NewJSONLSink(dir string) (*JSONLSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &JSONLSink{dir: dir}, nil
}

func (s *JSONLSink) path(day string) string {
	return filepath.Join(s.dir, "trades_"+day+".jsonl")
}

func (s *JSONLSink) Record(t TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(dayStamp(t.Timestamp)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open trade jsonl: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	return enc.Encode(t)
}

// DailyTrades reads back the records for a day (today when zero).
func (s *JSONLSink) DailyTrades(day time.Time) ([]TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if day.IsZero() {
		day = time.Now()
	}

	f, err := os.Open(s.path(dayStamp(day)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var trades []TradeRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var t TradeRecord
		if err := json.Unmarshal(sc.Bytes(), &t); err != nil {
			return nil, fmt.Errorf("corrupt journal line: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, sc.Err()
}

// DailyPnL sums realized P&L over the day's records.
func (s *JSONLSink) DailyPnL(day time.Time) (float64, error) {
	trades, err := s.DailyTrades(day)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, t := range trades {
		total += t.PnL
	}
	return total, nil
}

func (s *JSONLSink) Close() error { return nil }

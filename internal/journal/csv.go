package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"id", "timestamp", "symbol", "action", "quantity", "price",
	"order_id", "strategy", "pnl", "commission", "status",
}

// CSVSink appends trade records to one CSV file per day. The header is
// written when the file is first created, so restarts keep appending to
// the same day file cleanly.
type CSVSink struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
	w    *csv.Writer
}

func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

func (s *CSVSink) Record(t TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotate(t.Timestamp); err != nil {
		return err
	}

	err := s.w.Write([]string{
		t.ID,
		t.Timestamp.Format(time.RFC3339),
		t.Symbol,
		t.Action,
		strconv.Itoa(t.Quantity),
		strconv.FormatFloat(t.Price, 'f', -1, 64),
		t.OrderID,
		t.Strategy,
		strconv.FormatFloat(t.PnL, 'f', -1, 64),
		strconv.FormatFloat(t.Commission, 'f', -1, 64),
		t.Status,
	})
	if err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// rotate opens the file for the record's day, writing the header when the
// file does not exist yet.
func (s *CSVSink) rotate(ts time.Time) error {
	day := dayStamp(ts)
	if s.file != nil && s.day == day {
		return nil
	}
	if s.file != nil {
		s.w.Flush()
		s.file.Close()
	}

	path := filepath.Join(s.dir, "trades_"+day+".csv")
	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open trade csv: %w", err)
	}

	s.file = f
	s.day = day
	s.w = csv.NewWriter(f)

	if needHeader {
		if err := s.w.Write(csvHeader); err != nil {
			return err
		}
		s.w.Flush()
	}
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	s.w.Flush()
	err := s.file.Close()
	s.file = nil
	return err
}

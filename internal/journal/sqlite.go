package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink stores trade records in SQLite for querying across days.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Record(t TradeRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO trades
		(id, ts, symbol, action, quantity, price, order_id, strategy, pnl, commission, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Timestamp.UTC(), t.Symbol, t.Action, t.Quantity, t.Price,
		t.OrderID, t.Strategy, t.PnL, t.Commission, t.Status,
	)
	return err
}

// TradesByDay returns the records whose timestamp falls on the given local
// day, oldest first.
func (s *SQLiteSink) TradesByDay(day time.Time) ([]TradeRecord, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := s.db.Query(`
		SELECT id, ts, symbol, action, quantity, price, order_id, strategy, pnl, commission, status
		FROM trades WHERE ts >= ? AND ts < ? ORDER BY id`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Symbol, &t.Action, &t.Quantity,
			&t.Price, &t.OrderID, &t.Strategy, &t.PnL, &t.Commission, &t.Status); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// DailyPnL sums realized P&L for the given local day.
func (s *SQLiteSink) DailyPnL(day time.Time) (float64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var total sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT SUM(pnl) FROM trades WHERE ts >= ? AND ts < ?`,
		start.UTC(), end.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/sandyviper/kite-viper-bot/pkg/id"
)

// Side is the direction of a position.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Position is one open position tracked by the book.
type Position struct {
	ID            string
	Symbol        string
	Quantity      int
	EntryPrice    float64
	Side          Side
	Strategy      string
	EntryTime     time.Time
	UnrealizedPnL float64
}

// Summary aggregates the current state of the book.
type Summary struct {
	OpenPositions   int
	RealizedPnL     float64
	UnrealizedPnL   float64
	NetPnL          float64
	RiskUtilization float64 // percent of MaxPositionValue committed
}

// Book tracks open positions and realized daily P&L. It holds no market
// data: unrealized P&L is computed from last prices supplied by the
// caller. Safe for concurrent use.
type Book struct {
	mu        sync.Mutex
	params    *Parameters
	positions map[string]*Position
	dailyPnL  float64
}

func NewBook(params *Parameters) *Book {
	return &Book{
		params:    params,
		positions: make(map[string]*Position),
	}
}

// Add opens a new tracked position and returns its id.
func (b *Book) Add(symbol string, quantity int, entryPrice float64, side Side, strategy string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := &Position{
		ID:         id.New(),
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		Side:       side,
		Strategy:   strategy,
		EntryTime:  time.Now(),
	}
	b.positions[p.ID] = p
	return p.ID
}

// Close removes a position, computes its realized P&L against the exit
// price and folds it into the daily total.
func (b *Book) Close(positionID string, exitPrice float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.positions[positionID]
	if !ok {
		return 0, fmt.Errorf("position not found: %s", positionID)
	}

	pnl := pnlFor(p.Side, p.EntryPrice, exitPrice, p.Quantity)
	b.dailyPnL += pnl
	delete(b.positions, positionID)
	return pnl, nil
}

// MarkToMarket refreshes unrealized P&L from the supplied last prices,
// keyed by symbol. Positions without a price keep their previous mark.
func (b *Book) MarkToMarket(lastPrices map[string]float64) map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	marks := make(map[string]float64, len(b.positions))
	for pid, p := range b.positions {
		ltp, ok := lastPrices[p.Symbol]
		if !ok {
			marks[pid] = p.UnrealizedPnL
			continue
		}
		p.UnrealizedPnL = pnlFor(p.Side, p.EntryPrice, ltp, p.Quantity)
		marks[pid] = p.UnrealizedPnL
	}
	return marks
}

// DailyPnL returns the realized P&L accumulated since the last reset.
func (b *Book) DailyPnL() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dailyPnL
}

// ResetDaily clears the realized P&L counter, typically at market open.
func (b *Book) ResetDaily() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dailyPnL = 0
}

// CanTrade reports whether new entries are allowed under the daily loss
// limit.
func (b *Book) CanTrade() bool {
	return WithinDailyLossLimit(b.DailyPnL(), b.params)
}

// Summary returns the aggregate view used by the watchdog and the status
// command.
func (b *Book) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	var committed, unrealized float64
	for _, p := range b.positions {
		committed += float64(p.Quantity) * p.EntryPrice
		unrealized += p.UnrealizedPnL
	}

	utilization := 0.0
	if b.params.MaxPositionValue > 0 {
		utilization = committed / b.params.MaxPositionValue * 100
	}

	return Summary{
		OpenPositions:   len(b.positions),
		RealizedPnL:     b.dailyPnL,
		UnrealizedPnL:   unrealized,
		NetPnL:          b.dailyPnL + unrealized,
		RiskUtilization: utilization,
	}
}

func pnlFor(side Side, entry, exit float64, quantity int) float64 {
	if side == SideSell {
		return (entry - exit) * float64(quantity)
	}
	return (exit - entry) * float64(quantity)
}

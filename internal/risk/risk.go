// Package risk implements position sizing and exposure limit checks for
// lot-traded instruments. Sizing is a synchronous, single-shot computation:
// no retries, no internal state, only caller-supplied arguments and
// read-only parameters.
package risk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput flags malformed sizing arguments. Fail fast.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownInstrument means no lot size is configured for the symbol.
	// The operator has to fix the configuration before the trade can size.
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// Parameters is the read-only risk configuration shared by every sizing
// call. It is loaded once at startup and never mutated afterwards.
type Parameters struct {
	// RiskPerTrade is the fraction of MaxPositionValue put at risk on a
	// single trade when the caller has no explicit budget.
	RiskPerTrade float64

	// MaxPositionValue caps the notional value (quantity x entry price) of
	// any single position.
	MaxPositionValue float64

	// MaxDailyLoss is the realized loss at which new entries stop.
	MaxDailyLoss float64

	// LotSizes maps a base symbol (NIFTY, BANKNIFTY, ...) to its minimum
	// tradable quantity increment.
	LotSizes map[string]int
}

// LotSize returns the lot size for a trading symbol. Derivative symbols
// carry strike/expiry suffixes after an underscore, so only the base symbol
// is looked up.
func (p *Parameters) LotSize(symbol string) (int, error) {
	base := symbol
	if i := strings.IndexByte(symbol, '_'); i >= 0 {
		base = symbol[:i]
	}
	lot, ok := p.LotSizes[strings.ToUpper(base)]
	if !ok {
		return 0, fmt.Errorf("%w: no lot size configured for %q", ErrUnknownInstrument, symbol)
	}
	return lot, nil
}

// DefaultBudget is the risk budget used when the caller does not supply
// one: RiskPerTrade applied to the maximum position value.
func (p *Parameters) DefaultBudget() float64 {
	return p.MaxPositionValue * p.RiskPerTrade
}

// WithinDailyLossLimit reports whether trading may continue given the
// current realized daily P&L. It returns false once the loss has reached
// MaxDailyLoss. The caller supplies the P&L on every call; no state is
// held here.
func WithinDailyLossLimit(dailyPnL float64, p *Parameters) bool {
	return dailyPnL > -p.MaxDailyLoss
}

package risk

import (
	"fmt"
	"math"
)

// Status qualifies a sizing result. These are informational, not errors: a
// result with a zero quantity is still a valid answer.
type Status string

const (
	// StatusOK means the quantity fits every configured limit unchanged.
	StatusOK Status = "OK"

	// StatusBelowMinimumLot means the risk budget buys less than one lot,
	// so the trade should be skipped.
	StatusBelowMinimumLot Status = "BELOW_MINIMUM_LOT"

	// StatusClampedByExposure means the quantity was reduced to keep the
	// position value under MaxPositionValue.
	StatusClampedByExposure Status = "CLAMPED_BY_EXPOSURE_LIMIT"
)

// SizingResult is the outcome of a Size call.
type SizingResult struct {
	// Quantity is a non-negative multiple of the instrument's lot size.
	Quantity int

	// Lots is Quantity divided by the lot size.
	Lots int

	// Exposure is Quantity x entry price. Never exceeds MaxPositionValue.
	Exposure float64

	// PerUnitRisk is the loss per unit if the stop is hit.
	PerUnitRisk float64

	Status Status
}

// Size computes the order quantity for a trade given its entry, stop-loss
// and risk budget. The raw quantity riskBudget/perUnitRisk is rounded down
// to a whole number of lots and then clamped so the resulting exposure
// stays within Parameters.MaxPositionValue. Rounding is always toward
// zero, so the risked amount never exceeds the budget.
func Size(symbol string, entryPrice, stopLoss, riskBudget float64, p *Parameters) (SizingResult, error) {
	if !isFinite(entryPrice) || !isFinite(stopLoss) || !isFinite(riskBudget) {
		return SizingResult{}, fmt.Errorf("%w: non-finite sizing argument", ErrInvalidInput)
	}
	if entryPrice <= 0 {
		return SizingResult{}, fmt.Errorf("%w: entry price must be positive, got %v", ErrInvalidInput, entryPrice)
	}
	if riskBudget <= 0 {
		return SizingResult{}, fmt.Errorf("%w: risk budget must be positive, got %v", ErrInvalidInput, riskBudget)
	}
	if stopLoss == entryPrice {
		return SizingResult{}, fmt.Errorf("%w: stop loss equals entry price", ErrInvalidInput)
	}

	lot, err := p.LotSize(symbol)
	if err != nil {
		return SizingResult{}, err
	}

	perUnitRisk := math.Abs(entryPrice - stopLoss)
	rawQuantity := riskBudget / perUnitRisk

	lots := int(math.Floor(rawQuantity / float64(lot)))
	quantity := lots * lot

	result := SizingResult{
		Quantity:    quantity,
		Lots:        lots,
		PerUnitRisk: perUnitRisk,
		Status:      StatusOK,
	}

	if quantity < lot {
		result.Quantity = 0
		result.Lots = 0
		result.Status = StatusBelowMinimumLot
		return result, nil
	}

	if exposure := float64(quantity) * entryPrice; exposure > p.MaxPositionValue {
		maxLots := int(math.Floor(p.MaxPositionValue / (entryPrice * float64(lot))))
		if maxLots < 0 {
			maxLots = 0
		}
		result.Lots = maxLots
		result.Quantity = maxLots * lot
		result.Status = StatusClampedByExposure
	}

	result.Exposure = float64(result.Quantity) * entryPrice
	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

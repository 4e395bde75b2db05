package indicators

import (
	"fmt"
	"math"
)

// RSI computes the Relative Strength Index using rolling simple averages of
// gains and losses over the given period. Every value is bounded in
// [0, 100]; a window with no losses reads 100 and a window with no gains
// reads 0. The output holds one value per complete window, so it is period
// entries shorter than the input (one price change consumes one sample).
func RSI(series []float64, period int) ([]float64, error) {
	if err := validatePeriod("RSI", period); err != nil {
		return nil, err
	}
	if err := validateSeries(series); err != nil {
		return nil, err
	}
	if len(series) < period+1 {
		return nil, fmt.Errorf("%w: RSI(%d) needs %d samples, have %d",
			ErrInsufficientData, period, period+1, len(series))
	}

	gains := make([]float64, len(series)-1)
	losses := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		change := series[i] - series[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = math.Abs(change)
		}
	}

	out := make([]float64, 0, len(gains)-period+1)
	for i := period - 1; i < len(gains); i++ {
		avgGain := mean(gains[i-period+1 : i+1])
		avgLoss := mean(losses[i-period+1 : i+1])

		if avgLoss == 0 {
			out = append(out, 100)
			continue
		}
		rs := avgGain / avgLoss
		out = append(out, 100-100/(1+rs))
	}
	return out, nil
}

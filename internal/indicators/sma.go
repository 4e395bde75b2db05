package indicators

import "fmt"

// SMA computes the simple moving average of the series over the given
// period. The result is aligned to the tail of the input: output[i]
// corresponds to series[i+period-1], so the output is period-1 entries
// shorter than the input.
func SMA(series []float64, period int) ([]float64, error) {
	if err := validatePeriod("SMA", period); err != nil {
		return nil, err
	}
	if err := validateSeries(series); err != nil {
		return nil, err
	}
	if len(series) < period {
		return nil, fmt.Errorf("%w: SMA(%d) needs %d samples, have %d",
			ErrInsufficientData, period, period, len(series))
	}

	out := make([]float64, 0, len(series)-period+1)
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= period {
			sum -= series[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

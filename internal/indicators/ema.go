package indicators

import "fmt"

// EMA computes the exponential moving average of the series. The first
// value is seeded with the simple average of the first period samples, then
// each later sample is blended in with alpha = 2/(period+1). Output
// alignment matches SMA: period-1 leading entries are dropped.
func EMA(series []float64, period int) ([]float64, error) {
	if err := validatePeriod("EMA", period); err != nil {
		return nil, err
	}
	if err := validateSeries(series); err != nil {
		return nil, err
	}
	if len(series) < period {
		return nil, fmt.Errorf("%w: EMA(%d) needs %d samples, have %d",
			ErrInsufficientData, period, period, len(series))
	}

	alpha := 2.0 / float64(period+1)

	out := make([]float64, 0, len(series)-period+1)
	out = append(out, mean(series[:period]))
	for _, v := range series[period:] {
		prev := out[len(out)-1]
		out = append(out, v*alpha+prev*(1-alpha))
	}
	return out, nil
}

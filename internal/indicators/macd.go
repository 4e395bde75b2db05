package indicators

import "fmt"

// MACD computes the moving average convergence/divergence of the series:
// the MACD line (fast EMA minus slow EMA, aligned to the slow EMA), the
// signal line (EMA of the MACD line over signalPeriod) and the histogram
// (MACD minus signal, aligned to the tail of the MACD line). The histogram
// and signal line share the same length.
func MACD(series []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []float64, err error) {
	if err := validatePeriod("MACD fast", fastPeriod); err != nil {
		return nil, nil, nil, err
	}
	if err := validatePeriod("MACD slow", slowPeriod); err != nil {
		return nil, nil, nil, err
	}
	if err := validatePeriod("MACD signal", signalPeriod); err != nil {
		return nil, nil, nil, err
	}
	if fastPeriod >= slowPeriod {
		return nil, nil, nil, fmt.Errorf("%w: MACD fast period %d must be shorter than slow period %d",
			ErrInvalidInput, fastPeriod, slowPeriod)
	}
	if err := validateSeries(series); err != nil {
		return nil, nil, nil, err
	}
	if len(series) < slowPeriod+signalPeriod {
		return nil, nil, nil, fmt.Errorf("%w: MACD(%d,%d,%d) needs %d samples, have %d",
			ErrInsufficientData, fastPeriod, slowPeriod, signalPeriod,
			slowPeriod+signalPeriod, len(series))
	}

	fastEMA, err := EMA(series, fastPeriod)
	if err != nil {
		return nil, nil, nil, err
	}
	slowEMA, err := EMA(series, slowPeriod)
	if err != nil {
		return nil, nil, nil, err
	}

	// The slow EMA starts slowPeriod-fastPeriod entries later.
	fastEMA = fastEMA[slowPeriod-fastPeriod:]

	macd = make([]float64, len(slowEMA))
	for i := range slowEMA {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signal, err = EMA(macd, signalPeriod)
	if err != nil {
		return nil, nil, nil, err
	}

	histogram = make([]float64, len(signal))
	offset := len(macd) - len(signal)
	for i := range signal {
		histogram[i] = macd[offset+i] - signal[i]
	}
	return macd, signal, histogram, nil
}

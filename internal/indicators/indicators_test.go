package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risingSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 100 + float64(i)
	}
	return s
}

func fallingSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 100 - float64(i)
	}
	return s
}

func TestSMA_KnownValues(t *testing.T) {
	out, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3, 4}, out)
}

func TestSMA_OutputLength(t *testing.T) {
	for _, period := range []int{1, 2, 5, 14, 20} {
		series := risingSeries(20)
		out, err := SMA(series, period)
		require.NoError(t, err)
		assert.Len(t, out, len(series)-period+1, "period %d", period)
	}
}

func TestSMA_DoesNotMutateInput(t *testing.T) {
	series := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	original := append([]float64(nil), series...)

	_, err := SMA(series, 4)
	require.NoError(t, err)
	assert.Equal(t, original, series)
}

func TestSMA_InsufficientData(t *testing.T) {
	_, err := SMA(risingSeries(5), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSMA_InvalidInput(t *testing.T) {
	_, err := SMA(nil, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SMA([]float64{1, math.NaN(), 3}, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SMA([]float64{1, math.Inf(1), 3}, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SMA(risingSeries(10), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEMA_SeededWithSMA(t *testing.T) {
	series := []float64{10, 20, 30, 40}
	out, err := EMA(series, 3)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// First value is the plain average of the first window.
	assert.InDelta(t, 20.0, out[0], 1e-9)

	// Second value blends the next sample with alpha = 2/(period+1) = 0.5.
	assert.InDelta(t, 40*0.5+20*0.5, out[1], 1e-9)
}

func TestEMA_ConstantSeries(t *testing.T) {
	series := []float64{50, 50, 50, 50, 50, 50}
	out, err := EMA(series, 3)
	require.NoError(t, err)

	for _, v := range out {
		assert.InDelta(t, 50.0, v, 1e-9)
	}
}

func TestRSI_Bounds(t *testing.T) {
	cases := map[string][]float64{
		"rising":  risingSeries(30),
		"falling": fallingSeries(30),
		"flat":    {100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100},
		"mixed":   {100, 102, 99, 104, 101, 98, 103, 100, 105, 102, 99, 104, 101, 106, 103, 100},
	}

	for name, series := range cases {
		out, err := RSI(series, 14)
		require.NoError(t, err, name)
		require.Len(t, out, len(series)-14, name)
		for _, v := range out {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 100.0, name)
		}
	}
}

func TestRSI_AllGainsReadsHundred(t *testing.T) {
	out, err := RSI(risingSeries(20), 14)
	require.NoError(t, err)
	for _, v := range out {
		assert.Equal(t, 100.0, v)
	}
}

func TestRSI_AllLossesReadsZero(t *testing.T) {
	out, err := RSI(fallingSeries(20), 14)
	require.NoError(t, err)
	for _, v := range out {
		assert.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	_, err := RSI(risingSeries(14), 14) // needs period+1
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = RSI(risingSeries(15), 14)
	assert.NoError(t, err)
}

func TestMACD_HistogramIdentity(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 100 + 10*math.Sin(float64(i)/5)
	}

	macd, signal, histogram, err := MACD(series, 12, 26, 9)
	require.NoError(t, err)
	require.Len(t, histogram, len(signal))

	offset := len(macd) - len(signal)
	for i := range signal {
		assert.InDelta(t, macd[offset+i]-signal[i], histogram[i], 1e-9)
	}
}

func TestMACD_Lengths(t *testing.T) {
	series := risingSeries(50)
	macd, signal, histogram, err := MACD(series, 12, 26, 9)
	require.NoError(t, err)

	assert.Len(t, macd, len(series)-26+1)
	assert.Len(t, signal, len(macd)-9+1)
	assert.Len(t, histogram, len(signal))
}

func TestMACD_InsufficientData(t *testing.T) {
	_, _, _, err := MACD(risingSeries(34), 12, 26, 9) // needs slow+signal = 35
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, _, _, err = MACD(risingSeries(35), 12, 26, 9)
	assert.NoError(t, err)
}

func TestMACD_PeriodOrder(t *testing.T) {
	_, _, _, err := MACD(risingSeries(60), 26, 12, 9)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

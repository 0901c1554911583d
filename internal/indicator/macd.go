package indicator

// MACDSeries holds the MACD line, its signal line and the histogram. Each
// slice is aligned to the end of the input: the last element belongs to the
// last price.
type MACDSeries struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates the EMA-based MACD line (fast EMA - slow EMA), an EMA
// signal line over it and histogram = MACD - signal.
// The histogram is first defined at slow+signal-1 prices.
func MACD(prices []float64, fast, slow, signal int) MACDSeries {
	if fast <= 0 || slow <= fast || signal <= 0 || len(prices) < slow {
		return MACDSeries{MACD: []float64{}, Signal: []float64{}, Histogram: []float64{}}
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	// fastEMA[j+offset] and slowEMA[j] belong to the same price
	offset := slow - fast
	macd := make([]float64, len(slowEMA))
	for j := range slowEMA {
		macd[j] = fastEMA[j+offset] - slowEMA[j]
	}

	signalLine := EMA(macd, signal)
	histogram := make([]float64, len(signalLine))
	for k := range signalLine {
		histogram[k] = macd[k+signal-1] - signalLine[k]
	}

	return MACDSeries{
		MACD:      macd,
		Signal:    signalLine,
		Histogram: histogram,
	}
}

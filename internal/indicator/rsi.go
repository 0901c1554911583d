package indicator

import "math"

// RSI calculates the Relative Strength Index with Wilder smoothing.
// The first average gain/loss is the plain mean of the first period changes;
// later averages are (prev*(period-1) + current) / period. Readings are
// rounded to two decimals.
// Returns slice of length: len(prices) - period
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period)
	n := float64(period)

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(prices[i-1], prices[i])
		gainSum += gain
		lossSum += loss
	}
	avgGain := gainSum / n
	avgLoss := lossSum / n
	result = append(result, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(prices); i++ {
		gain, loss := splitChange(prices[i-1], prices[i])
		avgGain = wilderStep(avgGain, gain, n)
		avgLoss = wilderStep(avgLoss, loss, n)
		result = append(result, rsiValue(avgGain, avgLoss))
	}

	return result
}

// splitChange returns the gain and loss of a price move, both non-negative.
func splitChange(prev, curr float64) (gain, loss float64) {
	change := curr - prev
	switch {
	case change > 0:
		return change, 0
	case change < 0:
		return 0, -change
	default:
		return 0, 0
	}
}

func wilderStep(avg, current, n float64) float64 {
	return (float64(avg*(n-1)) + current) / n
}

// rsiValue maps average gain and loss to [0, 100]. A window with neither
// gains nor losses is neutral (50).
func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	if avgGain == 0 {
		return 0
	}
	rs := avgGain / avgLoss
	return round2(100 - 100/(1+rs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

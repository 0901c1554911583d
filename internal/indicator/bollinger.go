package indicator

import "math"

// Bands holds Bollinger Band series aligned to the end of the input.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands calculates a period SMA middle band with upper/lower bands
// width population standard deviations away.
// Returns series of length: len(prices) - period + 1
func BollingerBands(prices []float64, period int, width float64) Bands {
	middle := SMA(prices, period)
	bands := Bands{
		Upper:  make([]float64, len(middle)),
		Middle: middle,
		Lower:  make([]float64, len(middle)),
	}

	for j, mean := range middle {
		offset := float64(width * stdDev(prices[j:j+period], mean))
		bands.Upper[j] = mean + offset
		bands.Lower[j] = mean - offset
	}

	return bands
}

// stdDev is the population standard deviation of window around mean.
func stdDev(window []float64, mean float64) float64 {
	var sum float64
	for _, p := range window {
		d := p - mean
		sum += float64(d * d)
	}
	return math.Sqrt(sum / float64(len(window)))
}

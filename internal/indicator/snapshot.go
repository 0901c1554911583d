package indicator

// Fixed indicator parameters used by the simulator.
const (
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	BollingerPeriod = 20
	BollingerWidth  = 2.0
)

// Snapshot is the indicator state at one bar, computed from the prices up
// to and including that bar.
type Snapshot struct {
	Bars      int   `json:"bars"`
	RSI       Value `json:"rsi"`
	MACD      Value `json:"macd"`
	Signal    Value `json:"signal"`
	Histogram Value `json:"histogram"`
	Upper     Value `json:"upper"`
	Middle    Value `json:"middle"`
	Lower     Value `json:"lower"`
}

// Compute recomputes every indicator over the causal prefix. Any failure
// inside the numeric code yields a snapshot whose readings are all undefined.
func Compute(prefix []float64) (snap Snapshot) {
	snap.Bars = len(prefix)
	defer func() {
		if recover() != nil {
			snap = Snapshot{Bars: len(prefix)}
		}
	}()

	macd := MACD(prefix, MACDFast, MACDSlow, MACDSignal)
	bands := BollingerBands(prefix, BollingerPeriod, BollingerWidth)

	snap.RSI = last(RSI(prefix, RSIPeriod))
	snap.MACD = last(macd.MACD)
	snap.Signal = last(macd.Signal)
	snap.Histogram = last(macd.Histogram)
	snap.Upper = last(bands.Upper)
	snap.Middle = last(bands.Middle)
	snap.Lower = last(bands.Lower)
	return snap
}

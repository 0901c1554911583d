package indicator

// Stream computes snapshots incrementally, one close at a time. After n
// pushes its snapshot equals Compute over those n prices exactly, at O(1)
// amortized cost per push.
type Stream struct {
	count int
	prev  float64

	gainSum, lossSum float64
	avgGain, avgLoss float64

	fast, slow, signal ema

	window []float64
	sum    float64
}

// NewStream creates a stream with the fixed simulator parameters.
func NewStream() *Stream {
	return &Stream{
		fast:   newEMA(MACDFast),
		slow:   newEMA(MACDSlow),
		signal: newEMA(MACDSignal),
		window: make([]float64, 0, BollingerPeriod+1),
	}
}

// Len returns the number of prices pushed so far.
func (s *Stream) Len() int {
	return s.count
}

// Push appends the next close and returns the snapshot at that bar.
func (s *Stream) Push(price float64) Snapshot {
	snap := Snapshot{Bars: s.count + 1}
	snap.RSI = s.pushRSI(price)
	snap.MACD, snap.Signal, snap.Histogram = s.pushMACD(price)
	snap.Upper, snap.Middle, snap.Lower = s.pushBands(price)

	s.prev = price
	s.count++
	return snap
}

func (s *Stream) pushRSI(price float64) Value {
	if s.count == 0 {
		return Value{}
	}
	gain, loss := splitChange(s.prev, price)
	n := float64(RSIPeriod)

	switch {
	case s.count < RSIPeriod:
		s.gainSum += gain
		s.lossSum += loss
		return Value{}
	case s.count == RSIPeriod:
		s.gainSum += gain
		s.lossSum += loss
		s.avgGain = s.gainSum / n
		s.avgLoss = s.lossSum / n
	default:
		s.avgGain = wilderStep(s.avgGain, gain, n)
		s.avgLoss = wilderStep(s.avgLoss, loss, n)
	}
	return Some(rsiValue(s.avgGain, s.avgLoss))
}

func (s *Stream) pushMACD(price float64) (macd, signal, histogram Value) {
	fast, fastOK := s.fast.push(price)
	slow, slowOK := s.slow.push(price)
	if !fastOK || !slowOK {
		return Value{}, Value{}, Value{}
	}

	line := fast - slow
	sig, ok := s.signal.push(line)
	if !ok {
		return Some(line), Value{}, Value{}
	}
	return Some(line), Some(sig), Some(line - sig)
}

func (s *Stream) pushBands(price float64) (upper, middle, lower Value) {
	if len(s.window) < BollingerPeriod {
		s.sum += price
		s.window = append(s.window, price)
		if len(s.window) < BollingerPeriod {
			return Value{}, Value{}, Value{}
		}
	} else {
		s.sum = s.sum - s.window[0] + price
		s.window = append(s.window[1:], price)
	}

	mean := s.sum / float64(BollingerPeriod)
	offset := float64(BollingerWidth * stdDev(s.window, mean))
	return Some(mean + offset), Some(mean), Some(mean - offset)
}

// ema is a streaming EMA seeded with the SMA of its first period values.
type ema struct {
	period     int
	multiplier float64
	count      int
	sum        float64
	value      float64
}

func newEMA(period int) ema {
	return ema{period: period, multiplier: emaMultiplier(period)}
}

func (e *ema) push(x float64) (float64, bool) {
	if e.count < e.period {
		e.sum += x
		e.count++
		if e.count < e.period {
			return 0, false
		}
		e.value = e.sum / float64(e.period)
		return e.value, true
	}
	e.value = emaStep(e.value, x, e.multiplier)
	return e.value, true
}

package indicator

import (
	"math"
	"strconv"
)

// Value is an indicator reading that may not be computable yet. The zero
// Value is undefined.
type Value struct {
	v  float64
	ok bool
}

// Some returns a defined Value. NaN and infinities are treated as undefined.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// last returns the final element of a series as a Value.
func last(series []float64) Value {
	if len(series) == 0 {
		return Value{}
	}
	return Some(series[len(series)-1])
}

// Valid reports whether the value is defined.
func (v Value) Valid() bool { return v.ok }

// Float returns the reading, or 0 when undefined.
func (v Value) Float() float64 { return v.v }

// Get returns the reading and whether it is defined.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Below reports whether the value is defined and strictly less than x.
func (v Value) Below(x float64) bool { return v.ok && v.v < x }

// Above reports whether the value is defined and strictly greater than x.
func (v Value) Above(x float64) bool { return v.ok && v.v > x }

func (v Value) String() string {
	if !v.ok {
		return "undefined"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.v, 'g', -1, 64), nil
}

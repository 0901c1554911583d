package collector

import (
	"sort"

	"github.com/newthinker/aurum/internal/core"
)

// SortBars orders bars oldest first and drops repeated dates, keeping the
// last occurrence of each date.
func SortBars(bars []core.PriceBar) []core.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date.Time)
	})

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

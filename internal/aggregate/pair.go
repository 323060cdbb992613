package aggregate

import (
	"math"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"gonum.org/v1/gonum/stat"
)

// PairDifference aligns two sensors' series on timestamp (inner join) and
// returns the mean absolute difference over the aligned rows inside window.
// The boolean is false when either series is empty or nothing aligns, in which
// case the station should be left out of the output.
func PairDifference(a, b []mesonet.Sample, now time.Time, window time.Duration) (Record, bool) {
	left := toPoints(a)
	right := toPoints(b)
	if len(left) == 0 || len(right) == 0 {
		return Record{}, false
	}

	byTime := make(map[int64]point, len(right))
	for _, p := range right {
		if !p.valid {
			continue
		}
		if _, dup := byTime[p.t.UnixNano()]; !dup {
			byTime[p.t.UnixNano()] = p
		}
	}

	var (
		diffs  []float64
		newest *string
		seen   = make(map[int64]bool, len(left))
	)
	for _, p := range left {
		key := p.t.UnixNano()
		if !p.valid || seen[key] || !Fresh(p.t, now, window) {
			continue
		}
		q, ok := byTime[key]
		if !ok {
			continue
		}
		seen[key] = true
		if newest == nil {
			newest = ptr(p.ts)
		}
		diffs = append(diffs, math.Abs(p.v-q.v))
	}

	if len(diffs) == 0 {
		return Record{}, false
	}
	return Record{Value: ptr(stat.Mean(diffs, nil)), Timestamp: newest}, true
}

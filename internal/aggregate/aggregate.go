// Package aggregate reduces raw mesonet samples into one output record per station.
//
// Every rule is a pure function of its samples and a reference time; nothing here
// performs I/O or keeps state between calls.
package aggregate

import (
	"sort"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Record is one station's value for a derived metric. Nil fields mean no data.
type Record struct {
	Value     *float64
	Timestamp *string
}

// MetricSet maps station id to record for a single derived metric
type MetricSet map[string]Record

// NoData is the record used for stations without any usable sample
var NoData = Record{}

// HasValue reports whether the record carries a value
func (r Record) HasValue() bool {
	return r.Value != nil
}

func ptr[T any](v T) *T {
	return &v
}

// point is a sample with its parsed time and numeric value
type point struct {
	ts    string
	t     time.Time
	v     float64
	valid bool
}

func toPoints(samples []mesonet.Sample) []point {
	pts := make([]point, 0, len(samples))
	for _, s := range samples {
		t, ok := s.Time()
		if !ok {
			continue
		}
		v, valid := s.Value.Float()
		pts = append(pts, point{ts: s.Timestamp, t: t, v: v, valid: valid})
	}
	// newest first, regardless of upstream ordering
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].t.After(pts[j].t)
	})
	return pts
}

// Fresh reports whether a sample taken at t is within maxAge of now.
// A zero maxAge disables the check.
func Fresh(t, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(t) <= maxAge
}

// inWindow returns the numeric values of points younger than window along
// with the newest timestamp inside the window.
func inWindow(pts []point, now time.Time, window time.Duration) ([]float64, *string) {
	var (
		values []float64
		newest *string
	)
	for _, p := range pts {
		if !Fresh(p.t, now, window) {
			continue
		}
		if newest == nil {
			newest = ptr(p.ts)
		}
		if p.valid {
			values = append(values, p.v)
		}
	}
	return values, newest
}

// newestTimestamp returns the timestamp of the newest sample, or the first
// raw timestamp when none parse.
func newestTimestamp(samples []mesonet.Sample, pts []point) *string {
	if len(pts) > 0 {
		return ptr(pts[0].ts)
	}
	for _, s := range samples {
		if s.Timestamp != "" {
			return ptr(s.Timestamp)
		}
	}
	return nil
}

// Latest returns the newest sample's value. The value is nulled when the
// sample is older than maxAge; the timestamp is kept for diagnostics.
func Latest(samples []mesonet.Sample, now time.Time, maxAge time.Duration) Record {
	pts := toPoints(samples)
	if len(pts) == 0 {
		return Record{Timestamp: newestTimestamp(samples, pts)}
	}

	p := pts[0]
	rec := Record{Timestamp: ptr(p.ts)}
	if p.valid && Fresh(p.t, now, maxAge) {
		rec.Value = ptr(p.v)
	}
	return rec
}

// windowed runs reduce over the numeric values inside window. The value is
// null when the window holds no numeric values.
func windowed(samples []mesonet.Sample, now time.Time, window time.Duration, reduce func([]float64) float64) Record {
	pts := toPoints(samples)
	values, newest := inWindow(pts, now, window)
	if newest == nil {
		return Record{Timestamp: newestTimestamp(samples, pts)}
	}
	rec := Record{Timestamp: newest}
	if len(values) > 0 {
		rec.Value = ptr(reduce(values))
	}
	return rec
}

// Sum totals the numeric values inside the trailing window, e.g. 24h rainfall.
// A window holding only null readings sums to zero.
func Sum(samples []mesonet.Sample, now time.Time, window time.Duration) Record {
	rec := windowed(samples, now, window, floats.Sum)
	if rec.Value == nil && len(samples) > 0 {
		if _, newest := inWindow(toPoints(samples), now, window); newest != nil {
			rec.Value = ptr(0.0)
		}
	}
	return rec
}

// WindowMin returns the smallest numeric value inside the window, paired with
// the newest timestamp in the window. Used for worst-case battery voltage.
func WindowMin(samples []mesonet.Sample, now time.Time, window time.Duration) Record {
	return windowed(samples, now, window, floats.Min)
}

// WindowMax returns the largest numeric value inside the window, paired with
// the newest timestamp in the window.
func WindowMax(samples []mesonet.Sample, now time.Time, window time.Duration) Record {
	return windowed(samples, now, window, floats.Max)
}

// PercentAbove returns the percentage of numeric values in the window that
// are strictly greater than threshold.
func PercentAbove(samples []mesonet.Sample, now time.Time, window time.Duration, threshold float64) Record {
	return windowed(samples, now, window, func(values []float64) float64 {
		above := 0
		for _, v := range values {
			if v > threshold {
				above++
			}
		}
		return float64(above) / float64(len(values)) * 100
	})
}

// Mean returns the mean of the numeric values inside the window
func Mean(samples []mesonet.Sample, now time.Time, window time.Duration) Record {
	return windowed(samples, now, window, func(values []float64) float64 {
		return stat.Mean(values, nil)
	})
}

// SplitByVariable groups samples by variable name, preserving order
func SplitByVariable(samples []mesonet.Sample) map[string][]mesonet.Sample {
	out := make(map[string][]mesonet.Sample)
	for _, s := range samples {
		out[s.Variable] = append(out[s.Variable], s)
	}
	return out
}

package aggregate

import (
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
)

// WindRecord pairs wind direction and speed for one station
type WindRecord struct {
	Direction *float64
	Speed     *float64
	Timestamp *string
	Lat       *float64
	Lon       *float64
}

// WindResult explains how a WindRecord was built
type WindResult int

const (
	WindMatched WindResult = iota
	WindMissing
	WindMismatched
)

// Wind combines the newest direction and speed samples. Both values are
// accepted only when the two samples carry the identical timestamp string;
// otherwise both values and the timestamp are null. Stale pairs keep their
// timestamp but lose their values.
func Wind(direction, speed []mesonet.Sample, now time.Time, maxAge time.Duration, lat, lon *float64) (WindRecord, WindResult) {
	rec := WindRecord{Lat: lat, Lon: lon}

	dir := toPoints(direction)
	spd := toPoints(speed)
	if len(dir) == 0 || len(spd) == 0 {
		return rec, WindMissing
	}

	d, s := dir[0], spd[0]
	if d.ts != s.ts {
		return rec, WindMismatched
	}

	rec.Timestamp = ptr(s.ts)
	if Fresh(s.t, now, maxAge) {
		if d.valid {
			rec.Direction = ptr(d.v)
		}
		if s.valid {
			rec.Speed = ptr(s.v)
		}
	}
	return rec, WindMatched
}

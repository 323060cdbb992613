package mesonet

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// StationStatus is the operational state reported by the stations endpoint
type StationStatus string

const (
	StatusActive   StationStatus = "active"
	StatusInactive StationStatus = "inactive"
)

// Station is one entry of the station directory
type Station struct {
	ID     string        `json:"station_id"`
	Lat    *float64      `json:"-"`
	Lon    *float64      `json:"-"`
	Status StationStatus `json:"status"`
}

// UnmarshalJSON accepts lat/lng as numbers, numeric strings or null.
func (s *Station) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string        `json:"station_id"`
		Lat    Value         `json:"lat"`
		Lng    Value         `json:"lng"`
		Status StationStatus `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ID = raw.ID
	s.Status = raw.Status
	s.Lat = raw.Lat.Ptr()
	s.Lon = raw.Lng.Ptr()
	return nil
}

// Active reports whether the station is marked active upstream
func (s Station) Active() bool {
	return strings.EqualFold(string(s.Status), string(StatusActive))
}

// Sample is one measurement record returned by the measurements endpoint
type Sample struct {
	StationID string `json:"station_id"`
	Variable  string `json:"variable"`
	Value     Value  `json:"value"`
	Timestamp string `json:"timestamp"`
}

// Time parses the sample timestamp. Both RFC 3339 and the zone-less
// ISO 8601 form used by the API are accepted; zone-less times are UTC.
func (s Sample) Time() (time.Time, bool) {
	return ParseTimestamp(s.Timestamp)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an upstream timestamp string
func ParseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Value is a measurement value as delivered upstream. The API sends numbers,
// numeric strings or null; anything else decodes as an invalid value rather
// than failing the whole response.
type Value struct {
	f     float64
	valid bool
	raw   string
}

// NewValue returns a valid value holding f
func NewValue(f float64) Value {
	return Value{f: f, valid: true}
}

// Float returns the numeric value and whether it is usable
func (v Value) Float() (float64, bool) {
	return v.f, v.valid
}

// Ptr returns a pointer to the numeric value, or nil when invalid
func (v Value) Ptr() *float64 {
	if !v.valid {
		return nil
	}
	f := v.f
	return &f
}

// Raw returns the original token for invalid values, for logging
func (v Value) Raw() string {
	return v.raw
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		v.set(f, string(data))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			v.set(f, s)
			return nil
		}
		v.raw = s
		return nil
	}

	v.raw = string(data)
	return nil
}

func (v *Value) set(f float64, raw string) {
	v.raw = raw
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	v.f = f
	v.valid = true
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.f)
}

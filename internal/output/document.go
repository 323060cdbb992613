// Package output renders aggregated metrics into the JSON documents consumed
// by the map dashboard and writes them to disk atomically.
package output

import (
	"math"
	"strconv"
	"strings"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
)

// Sentinels written in place of missing values. The dashboard matches on
// these exact strings.
const (
	NoData      = "No Data"
	NoTimestamp = "No Timestamp"
)

// valuePrecision is the number of decimals kept when formatting values
const valuePrecision = 6

// Cell is one station's entry in a metric document
type Cell struct {
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}

// Document is the on-disk form of a metric: station id -> cell
type Document map[string]Cell

// WindCell is one station's entry in wind.json
type WindCell struct {
	Direction string   `json:"value_WDrs"`
	Speed     string   `json:"value_WS"`
	Timestamp string   `json:"timestamp"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

// WindDocument is the on-disk form of wind.json
type WindDocument map[string]WindCell

// FormatValue renders a value as a decimal string, or NoData for nil
func FormatValue(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NoData
	}
	out := strconv.FormatFloat(*v, 'f', valuePrecision, 64)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if out == "-0" {
		return "0"
	}
	return out
}

// FormatTimestamp returns the timestamp or NoTimestamp for nil
func FormatTimestamp(ts *string) string {
	if ts == nil || *ts == "" {
		return NoTimestamp
	}
	return *ts
}

// NewDocument converts a metric set into its document form
func NewDocument(set aggregate.MetricSet) Document {
	doc := make(Document, len(set))
	for station, rec := range set {
		doc[station] = Cell{
			Value:     FormatValue(rec.Value),
			Timestamp: FormatTimestamp(rec.Timestamp),
		}
	}
	return doc
}

// NewWindDocument converts wind records into wind.json form
func NewWindDocument(records map[string]aggregate.WindRecord) WindDocument {
	doc := make(WindDocument, len(records))
	for station, rec := range records {
		doc[station] = WindCell{
			Direction: FormatValue(rec.Direction),
			Speed:     FormatValue(rec.Speed),
			Timestamp: FormatTimestamp(rec.Timestamp),
			Lat:       rec.Lat,
			Lon:       rec.Lon,
		}
	}
	return doc
}

// LatestEntry is one row of latest_measurements.json
type LatestEntry struct {
	StationID string `json:"station_id"`
	Variable  string `json:"variable"`
	Timestamp string `json:"timestamp"`
}

// EarliestEntry is one row of earliest_measurements.json
type EarliestEntry struct {
	StationID string `json:"station_id"`
	Timestamp string `json:"timestamp"`
	Variable  string `json:"variable"`
}

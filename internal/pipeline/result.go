package pipeline

import (
	"sort"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"github.com/chrissnell/mesonet-exporter/internal/output"
)

// Report file names
const (
	LatestReport   = "latest_measurements"
	EarliestReport = "earliest_measurements"
)

// Result holds everything one run produced
type Result struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Stations int

	Metrics map[string]aggregate.MetricSet
	Wind    map[string]map[string]aggregate.WindRecord

	// Freshness report, populated when enabled
	Report   bool
	Latest   []output.LatestEntry
	Earliest []output.EarliestEntry

	// Requests counts upstream calls by result kind, probes included
	Requests map[string]int
}

func newResult(stations []mesonet.Station) *Result {
	return &Result{
		Stations: len(stations),
		Metrics:  make(map[string]aggregate.MetricSet),
		Wind:     make(map[string]map[string]aggregate.WindRecord),
		Latest:   []output.LatestEntry{},
		Earliest: []output.EarliestEntry{},
		Requests: make(map[string]int),
	}
}

func (r *Result) metricSet(name string) aggregate.MetricSet {
	set, ok := r.Metrics[name]
	if !ok {
		set = make(aggregate.MetricSet)
		r.Metrics[name] = set
	}
	return set
}

func (r *Result) windSet(name string) map[string]aggregate.WindRecord {
	set, ok := r.Wind[name]
	if !ok {
		set = make(map[string]aggregate.WindRecord)
		r.Wind[name] = set
	}
	return set
}

func (r *Result) count(out outcome) {
	if out.probed {
		r.Requests[out.probe.Kind.String()]++
	}
	for _, res := range out.results {
		r.Requests[res.Kind.String()]++
	}
}

// addReport records the newest timestamp of each reporting variable
func (r *Result) addReport(st mesonet.Station, out outcome) {
	if out.skipped {
		return
	}
	for _, res := range out.results {
		if !res.OK() || res.Empty() {
			continue
		}
		s := res.Samples[0]
		id := s.StationID
		if id == "" {
			id = st.ID
		}
		r.Latest = append(r.Latest, output.LatestEntry{StationID: id, Variable: s.Variable, Timestamp: s.Timestamp})
	}
}

// finishReport sorts the latest entries and derives, per station, the
// variable whose newest sample is the oldest.
func (r *Result) finishReport() {
	sort.Slice(r.Latest, func(i, j int) bool {
		if r.Latest[i].StationID != r.Latest[j].StationID {
			return r.Latest[i].StationID < r.Latest[j].StationID
		}
		return r.Latest[i].Variable < r.Latest[j].Variable
	})

	type oldest struct {
		entry output.EarliestEntry
		t     time.Time
	}
	byStation := make(map[string]oldest)
	var order []string
	for _, e := range r.Latest {
		t, ok := mesonet.ParseTimestamp(e.Timestamp)
		if !ok {
			continue
		}
		cur, seen := byStation[e.StationID]
		if !seen {
			order = append(order, e.StationID)
		}
		if !seen || t.Before(cur.t) {
			byStation[e.StationID] = oldest{
				entry: output.EarliestEntry{StationID: e.StationID, Timestamp: e.Timestamp, Variable: e.Variable},
				t:     t,
			}
		}
	}
	for _, id := range order {
		r.Earliest = append(r.Earliest, byStation[id].entry)
	}
}

// MetricNames returns the names of every document the run produced, sorted
func (r *Result) MetricNames() []string {
	docs := r.Documents()
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Documents renders the run into output documents keyed by file name
func (r *Result) Documents() map[string]any {
	docs := make(map[string]any, len(r.Metrics)+len(r.Wind)+2)
	for name, set := range r.Metrics {
		docs[name] = output.NewDocument(set)
	}
	for name, set := range r.Wind {
		docs[name] = output.NewWindDocument(set)
	}
	if r.Report {
		docs[LatestReport] = r.Latest
		docs[EarliestReport] = r.Earliest
	}
	return docs
}

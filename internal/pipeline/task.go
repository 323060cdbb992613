package pipeline

import (
	"context"
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"github.com/chrissnell/mesonet-exporter/pkg/config"
)

// task is one unit of work for the pool: a station and either a metric
// (metric >= 0) or the freshness report (metric == reportTask).
type task struct {
	station int
	metric  int
	probe   string
	queries []mesonet.Query
}

const reportTask = -1

// outcome is the result slot owned by exactly one task
type outcome struct {
	probed  bool
	skipped bool
	probe   mesonet.Result
	results []mesonet.Result
}

// plan builds the station x metric task list, followed by the report tasks
func (p *Pipeline) plan(stations []mesonet.Station, now time.Time) []task {
	var tasks []task

	for mi, m := range p.settings.Metrics {
		for si, st := range stations {
			t := task{station: si, metric: mi, queries: metricQueries(st.ID, m, now)}
			if m.Probe {
				t.probe = m.Variables[0]
			}
			tasks = append(tasks, t)
		}
	}

	if p.settings.Report.Enabled && len(p.settings.Report.Variables) > 0 {
		vars := p.settings.Report.Variables
		for si, st := range stations {
			t := task{station: si, metric: reportTask, probe: vars[0]}
			for _, v := range vars {
				t.queries = append(t.queries, mesonet.Query{
					StationIDs: []string{st.ID},
					Variables:  []string{v},
					Limit:      1,
				})
			}
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// metricQueries returns one query per variable. Each variable gets its own
// row limit, so a 288-row window of one variable is never truncated by the
// other.
func metricQueries(stationID string, m config.MetricData, now time.Time) []mesonet.Query {
	var start time.Time
	if m.StartWindow > 0 {
		start = now.Add(-m.StartWindow)
	}

	queries := make([]mesonet.Query, 0, len(m.Variables))
	for _, v := range m.Variables {
		queries = append(queries, mesonet.Query{
			StationIDs: []string{stationID},
			Variables:  []string{v},
			Limit:      m.Limit,
			StartDate:  start,
		})
	}
	return queries
}

// execute runs a task's probe (if any) and its queries in order. Requests
// within a task are sequential; the pool provides the parallelism.
func (p *Pipeline) execute(ctx context.Context, t task) outcome {
	var out outcome

	if t.probe != "" {
		out.probed = true
		out.probe = p.api.Measurements(ctx, mesonet.Query{
			StationIDs: t.queries[0].StationIDs,
			Variables:  []string{t.probe},
			Limit:      1,
		})
		if !out.probe.OK() || out.probe.Empty() {
			out.skipped = true
			return out
		}
	}

	out.results = make([]mesonet.Result, len(t.queries))
	for i, q := range t.queries {
		if ctx.Err() != nil {
			out.results[i] = mesonet.Result{Kind: mesonet.ResultTimeout, Err: ctx.Err()}
			continue
		}
		out.results[i] = p.api.Measurements(ctx, q)
	}
	return out
}

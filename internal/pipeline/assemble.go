package pipeline

import (
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
	"github.com/chrissnell/mesonet-exporter/pkg/config"
	"go.uber.org/zap"
)

// assemble folds task outcomes into metric maps. It runs on one goroutine
// after the pool has drained.
func (p *Pipeline) assemble(logger *zap.SugaredLogger, stations []mesonet.Station, tasks []task, outcomes []outcome, now time.Time) *Result {
	res := newResult(stations)
	res.Report = p.settings.Report.Enabled

	for i, t := range tasks {
		out := outcomes[i]
		res.count(out)

		st := stations[t.station]
		if t.metric == reportTask {
			res.addReport(st, out)
			continue
		}

		m := p.settings.Metrics[t.metric]
		if out.skipped {
			logger.Debugf("skipping %s for station %s: probe returned %v", m.Name, st.ID, out.probe.Kind)
			continue
		}
		for j, r := range out.results {
			if !r.OK() {
				logger.Warnw("query failed",
					"station", st.ID, "metric", m.Name, "variable", m.Variables[j],
					"kind", r.Kind.String(), "error", r.Err)
				continue
			}
			logDropped(logger, st.ID, m.Name, r.Samples)
		}

		switch m.Kind {
		case config.KindWind:
			rec, how := aggregate.Wind(samples(out.results[0], m.Variables[0]), samples(out.results[1], m.Variables[1]), now, m.MaxAge, st.Lat, st.Lon)
			if how == aggregate.WindMismatched {
				logger.Warnf("station %s: wind direction and speed timestamps differ, skipping", st.ID)
			}
			res.windSet(m.Name)[st.ID] = rec
		case config.KindPairDiff:
			if rec, ok := aggregate.PairDifference(samples(out.results[0], m.Variables[0]), samples(out.results[1], m.Variables[1]), now, m.MaxAge); ok {
				res.metricSet(m.Name)[st.ID] = rec
			}
		default:
			res.metricSet(m.Name)[st.ID] = reduce(m, samples(out.results[0], m.Variables[0]), now)
		}
	}

	// Metrics are present even when no station produced a record
	for _, m := range p.settings.Metrics {
		if m.Kind == config.KindWind {
			res.windSet(m.Name)
		} else {
			res.metricSet(m.Name)
		}
	}

	aggregate.ApplyMergeRules(res.Metrics, p.settings.MergeRules)
	res.finishReport()
	return res
}

// logDropped reports rows whose value was present but not numeric
func logDropped(logger *zap.SugaredLogger, station, metric string, rows []mesonet.Sample) {
	for _, s := range rows {
		if _, ok := s.Value.Float(); ok || s.Value.Raw() == "" {
			continue
		}
		logger.Debugw("dropping unparseable value",
			"station", station, "metric", metric, "variable", s.Variable,
			"timestamp", s.Timestamp, "raw", s.Value.Raw())
	}
}

// samples returns the rows of a successful result that belong to variable,
// and nil otherwise, so a failed query produces the same record as a station
// with no data. Rows without a variable name are kept.
func samples(r mesonet.Result, variable string) []mesonet.Sample {
	if !r.OK() {
		return nil
	}
	byVar := aggregate.SplitByVariable(r.Samples)
	return append(byVar[variable], byVar[""]...)
}

func reduce(m config.MetricData, s []mesonet.Sample, now time.Time) aggregate.Record {
	switch m.Kind {
	case config.KindLatest:
		return aggregate.Latest(s, now, m.MaxAge)
	case config.KindSum:
		return aggregate.Sum(s, now, m.MaxAge)
	case config.KindMin:
		return aggregate.WindowMin(s, now, m.MaxAge)
	case config.KindMax:
		return aggregate.WindowMax(s, now, m.MaxAge)
	case config.KindMean:
		return aggregate.Mean(s, now, m.MaxAge)
	case config.KindPercentAbove:
		return aggregate.PercentAbove(s, now, m.MaxAge, m.Threshold)
	}
	return aggregate.NoData
}

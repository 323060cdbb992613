package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration, returning a *ConfigError for the first
// problem found.
func (c *ConfigData) Validate() error {
	if c.API.Token == "" {
		return configErrorf(EnvToken, "must be set")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return configErrorf("api.base_url", "invalid URL %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return configErrorf("api.timeout", "must be positive")
	}
	if c.API.RequestInterval < 0 {
		return configErrorf("api.request_interval", "must not be negative")
	}
	if c.API.Workers < 1 {
		return configErrorf("api.workers", "must be at least 1")
	}
	if c.Interval < 0 {
		return configErrorf("interval", "must not be negative")
	}
	if len(c.Metrics) == 0 {
		return configErrorf("metrics", "at least one metric is required")
	}

	seen := make(map[string]bool, len(c.Metrics))
	for i, m := range c.Metrics {
		field := fmt.Sprintf("metrics[%d]", i)
		if err := m.validate(); err != nil {
			return configErrorf(field, "%v", err)
		}
		if seen[m.Name] {
			return configErrorf(field, "duplicate metric name %q", m.Name)
		}
		seen[m.Name] = true
	}

	for i, r := range c.MergeRules {
		if err := r.Validate(); err != nil {
			return configErrorf(fmt.Sprintf("merge_rules[%d]", i), "%v", err)
		}
	}

	if c.Report.Enabled && len(c.Report.Variables) == 0 {
		return configErrorf("report.variables", "at least one variable is required when the report is enabled")
	}
	return nil
}

func (m MetricData) validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}

	want := 1
	switch m.Kind {
	case KindLatest, KindSum, KindMin, KindMax, KindMean, KindPercentAbove:
	case KindWind, KindPairDiff:
		want = 2
	default:
		return fmt.Errorf("%s: unknown kind %q", m.Name, m.Kind)
	}
	if len(m.Variables) != want {
		return fmt.Errorf("%s: kind %s takes %d variable(s), got %d", m.Name, m.Kind, want, len(m.Variables))
	}
	if m.Limit < 1 {
		return fmt.Errorf("%s: limit must be at least 1", m.Name)
	}
	if m.MaxAge < 0 || m.StartWindow < 0 {
		return fmt.Errorf("%s: durations must not be negative", m.Name)
	}
	return nil
}

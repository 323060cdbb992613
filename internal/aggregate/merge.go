package aggregate

import "fmt"

// MergeMode selects how a co-located pair of stations is reconciled
type MergeMode string

const (
	MergeMin  MergeMode = "min"
	MergeMax  MergeMode = "max"
	MergeCopy MergeMode = "copy"
)

// MergeRule reconciles Target with Source for one metric. Stations 0520 and
// 0521 share an enclosure: 0521 reports the worse battery, the wetter
// enclosure, and borrows 0520's modem readings.
type MergeRule struct {
	Metric string    `yaml:"metric"`
	Source string    `yaml:"source"`
	Target string    `yaml:"target"`
	Mode   MergeMode `yaml:"mode"`
}

// Validate checks the rule for completeness
func (r MergeRule) Validate() error {
	if r.Metric == "" || r.Source == "" || r.Target == "" {
		return fmt.Errorf("merge rule needs metric, source and target (got %+v)", r)
	}
	switch r.Mode {
	case MergeMin, MergeMax, MergeCopy:
		return nil
	default:
		return fmt.Errorf("merge rule for %s: unknown mode %q", r.Metric, r.Mode)
	}
}

// DefaultMergeRules returns the 0520/0521 rules
func DefaultMergeRules() []MergeRule {
	const source, target = "0520", "0521"
	return []MergeRule{
		{Metric: "BattVolt", Source: source, Target: target, Mode: MergeMin},
		{Metric: "RHenc", Source: source, Target: target, Mode: MergeMax},
		{Metric: "RHenc_50", Source: source, Target: target, Mode: MergeMax},
		{Metric: "RHenc_80", Source: source, Target: target, Mode: MergeMax},
		{Metric: "CellStr", Source: source, Target: target, Mode: MergeCopy},
		{Metric: "CellQlt", Source: source, Target: target, Mode: MergeCopy},
	}
}

// Apply reconciles the rule's stations in set. Min and max only act when both
// stations carry a value; copy acts whenever the source station is present.
// It reports whether the target record changed.
func (r MergeRule) Apply(set MetricSet) bool {
	src, srcOK := set[r.Source]
	dst, dstOK := set[r.Target]

	switch r.Mode {
	case MergeCopy:
		if !srcOK {
			return false
		}
		set[r.Target] = src
		return true
	case MergeMin, MergeMax:
		if !srcOK || !dstOK || !src.HasValue() || !dst.HasValue() {
			return false
		}
		pickSource := *src.Value < *dst.Value
		if r.Mode == MergeMax {
			pickSource = *src.Value > *dst.Value
		}
		if pickSource {
			set[r.Target] = src
			return true
		}
	}
	return false
}

// ApplyMergeRules runs every rule against its metric, if that metric exists
func ApplyMergeRules(sets map[string]MetricSet, rules []MergeRule) {
	for _, rule := range rules {
		if set, ok := sets[rule.Metric]; ok {
			rule.Apply(set)
		}
	}
}

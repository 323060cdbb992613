package config

import (
	"time"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
	"github.com/chrissnell/mesonet-exporter/internal/mesonet"
)

const (
	DefaultRequestInterval = 200 * time.Millisecond
	DefaultWorkers         = 4

	// rows per station for 24 hours of 5-minute data
	dayOfSamples = 288
)

// Defaults returns the configuration used when no file is present
func Defaults() *ConfigData {
	return &ConfigData{
		API: APIData{
			BaseURL:         mesonet.DefaultBaseURL,
			Timeout:         mesonet.DefaultTimeout,
			RequestInterval: DefaultRequestInterval,
			Workers:         DefaultWorkers,
			ActiveOnly:      true,
		},
		Output:     OutputData{Dir: "."},
		Log:        LogData{MaxSizeMB: 10, MaxBackups: 3},
		Metrics:    DefaultMetrics(),
		MergeRules: aggregate.DefaultMergeRules(),
		Report: ReportData{
			Variables: []string{"RF_1_Tot300s", "Tair_1_Avg", "RH_1_Avg", "SWin_1_Avg", "WS_1_Avg"},
		},
	}
}

// DefaultMetrics returns the dashboard's metric catalogue
func DefaultMetrics() []MetricData {
	hour, day := time.Hour, 24*time.Hour

	latest := func(name string, maxAge time.Duration) MetricData {
		return MetricData{Name: name, Kind: KindLatest, Variables: []string{name}, Limit: 1, MaxAge: maxAge}
	}
	daily := func(name, kind, variable string) MetricData {
		return MetricData{Name: name, Kind: kind, Variables: []string{variable}, Limit: dayOfSamples, MaxAge: day}
	}

	percentAbove := func(name string, threshold float64) MetricData {
		m := daily(name, KindPercentAbove, "RHenc")
		m.Threshold = threshold
		return m
	}

	metrics := []MetricData{
		latest("Tair_1_Avg", hour),
		latest("RH_1_Avg", hour),
		latest("SWin_1_Avg", hour),
		latest("SM_1_Avg", day),
		latest("Tsoil_1_Avg", day),
		{
			Name: "RF_1_Tot300s_24H", Kind: KindSum, Variables: []string{"RF_1_Tot300s"},
			Limit: dayOfSamples, MaxAge: day, StartWindow: day,
		},
		{Name: "wind", Kind: KindWind, Variables: []string{"WDrs_1_Avg", "WS_1_Avg"}, Limit: 1, MaxAge: hour},
		daily("BattVolt", KindMin, "BattVolt"),
		daily("CellStr", KindMin, "CellStr"),
		daily("CellQlt", KindMin, "CellQlt"),
		daily("RHenc", KindMax, "RHenc"),
		percentAbove("RHenc_50", 50),
		percentAbove("RHenc_80", 80),
		{Name: "Tair_diff", Kind: KindPairDiff, Variables: []string{"Tair_1_Avg", "Tair_2_Avg"}, Limit: dayOfSamples, MaxAge: day},
		{Name: "RH_diff", Kind: KindPairDiff, Variables: []string{"RH_1_Avg", "RH_2_Avg"}, Limit: dayOfSamples, MaxAge: day},
	}
	return metrics
}

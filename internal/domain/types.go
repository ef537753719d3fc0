// Package domain defines the core types shared across the report pipeline:
// long-format samples, mapping entries, aggregations, and run summaries.
package domain

import (
	"strings"
	"time"
)

// Sample is a single point of the long-format time series produced by
// melting the wide source CSVs: one (time, name, value) triple.
type Sample struct {
	Time  time.Time
	Name  string
	Value float64
}

// Aggregation selects how in-window samples collapse to one cell value.
type Aggregation string

const (
	AggLast Aggregation = "LAST"
	AggAvg  Aggregation = "AVG"
	AggMax  Aggregation = "MAX"
	AggMin  Aggregation = "MIN"
	AggSum  Aggregation = "SUM"
)

// ParseAggregation normalizes an aggregation label. Unrecognized or empty
// labels fall back to LAST, mirroring the mapping sheet's default.
func ParseAggregation(s string) Aggregation {
	switch Aggregation(strings.ToUpper(strings.TrimSpace(s))) {
	case AggAvg:
		return AggAvg
	case AggMax:
		return AggMax
	case AggMin:
		return AggMin
	case AggSum:
		return AggSum
	default:
		return AggLast
	}
}

// MappingEntry is one row of the mapping workbook: which source series
// feeds which template cell, and how its samples are aggregated.
type MappingEntry struct {
	SourceName string
	TargetCell string
	Agg        Aggregation
}

// ReportRequest identifies the time window a report covers: samples in
// [Center-WindowMinutes, Center+WindowMinutes] inclusive are considered.
type ReportRequest struct {
	Center        time.Time
	WindowMinutes int
}

// Start returns the inclusive lower bound of the request window.
func (r ReportRequest) Start() time.Time {
	return r.Center.Add(-time.Duration(r.WindowMinutes) * time.Minute)
}

// End returns the inclusive upper bound of the request window.
func (r ReportRequest) End() time.Time {
	return r.Center.Add(time.Duration(r.WindowMinutes) * time.Minute)
}

// RunSummary records the outcome of one report fill.
type RunSummary struct {
	Center        time.Time
	WindowMinutes int
	Sheet         string
	Filled        int
	Missing       []string // mapping SourceNames with no in-window data
	OutputPath    string
	GeneratedAt   time.Time
}

// Accepted layouts for the interactive center-time input. The slash form is
// tolerated because operators paste it from the source system.
var centerTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006/01/02 15:04",
}

// ParseCenterTime parses the operator-supplied report time. Blank input and
// unknown layouts are errors; the caller re-prompts.
func ParseCenterTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &TimeFormatError{Input: s}
	}
	for _, layout := range centerTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &TimeFormatError{Input: s}
}

// TimeFormatError reports a center-time input that matched no accepted layout.
type TimeFormatError struct {
	Input string
}

func (e *TimeFormatError) Error() string {
	if strings.TrimSpace(e.Input) == "" {
		return "time must not be blank; expected YYYY-MM-DD HH:MM (e.g. 2025-12-25 01:35)"
	}
	return "invalid time " + e.Input + "; expected YYYY-MM-DD HH:MM (e.g. 2025-12-25 01:35)"
}

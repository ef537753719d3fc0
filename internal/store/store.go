// Package store defines the run archive: a log of generated reports and
// per-run snapshots of the windowed samples that fed them.
package store

import (
	"context"
	"time"

	"dailyreport/internal/domain"
)

// RunRecord is one archived report run.
type RunRecord struct {
	ID            int64
	Center        time.Time
	WindowMinutes int
	Sheet         string
	Filled        int
	MissingCount  int
	OutputPath    string
	CreatedAt     time.Time
}

// RunStore persists and retrieves report run records.
type RunStore interface {
	// SaveRun inserts a run record and returns its assigned ID.
	SaveRun(ctx context.Context, run *RunRecord) (int64, error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// SampleStore archives the in-window samples a report was built from.
type SampleStore interface {
	// WriteSamples snapshots the samples for the given request.
	WriteSamples(ctx context.Context, req domain.ReportRequest, samples []domain.Sample) error

	// ReadSamples returns the archived samples for the given request,
	// sorted by time.
	ReadSamples(ctx context.Context, req domain.ReportRequest) ([]domain.Sample, error)
}

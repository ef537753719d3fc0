package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"dailyreport/internal/domain"
)

// Compile-time interface check.
var _ SampleStore = (*ParquetStore)(nil)

// ParquetStore implements SampleStore using one Parquet file per report
// window under <DataDir>/samples/.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// SampleRecord is the Parquet schema for archived samples.
type SampleRecord struct {
	Name      string  `parquet:"name"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Value     float64 `parquet:"value"`
}

// WriteSamples snapshots the in-window samples for a request. Re-running the
// same window merges with the existing snapshot, deduplicating by
// (name, timestamp) and preferring the newer record.
func (s *ParquetStore) WriteSamples(_ context.Context, req domain.ReportRequest, samples []domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	records := make([]SampleRecord, 0, len(samples))
	for _, smp := range samples {
		records = append(records, SampleRecord{
			Name:      smp.Name,
			Timestamp: smp.Time.UnixMilli(),
			Value:     smp.Value,
		})
	}

	path := s.samplePath(req)

	existing, _ := readParquetFile[SampleRecord](path)
	merged := mergeSampleRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing samples for %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadSamples returns the archived samples for a request, sorted by time.
func (s *ParquetStore) ReadSamples(_ context.Context, req domain.ReportRequest) ([]domain.Sample, error) {
	records, err := readParquetFile[SampleRecord](s.samplePath(req))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	samples := make([]domain.Sample, 0, len(records))
	for _, r := range records {
		samples = append(samples, domain.Sample{
			Name:  r.Name,
			Time:  time.UnixMilli(r.Timestamp),
			Value: r.Value,
		})
	}
	return samples, nil
}

// samplePath returns the snapshot file for a request.
// Layout: <DataDir>/samples/<YYYYMMDD_HHMM>_pm<minutes>.parquet
func (s *ParquetStore) samplePath(req domain.ReportRequest) string {
	name := fmt.Sprintf("%s_pm%d.parquet", req.Center.Format("20060102_1504"), req.WindowMinutes)
	return filepath.Join(s.DataDir, "samples", name)
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeSampleRecords deduplicates by (name, timestamp), preferring incoming
// records over existing ones. Results are sorted by timestamp then name.
func mergeSampleRecords(existing, incoming []SampleRecord) []SampleRecord {
	type key struct {
		name string
		ts   int64
	}
	seen := make(map[key]SampleRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Name, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Name, r.Timestamp}] = r
	}

	merged := make([]SampleRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Timestamp != merged[j].Timestamp {
			return merged[i].Timestamp < merged[j].Timestamp
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}

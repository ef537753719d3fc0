package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dailyreport/internal/domain"
)

func TestSQLiteStoreSaveListRuns(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "report.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2025, 12, 25, 1, 35, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		id, err := s.SaveRun(ctx, &RunRecord{
			Center:        base.Add(time.Duration(i) * time.Hour),
			WindowMinutes: 30,
			Sheet:         "daily rev0(+cn)",
			Filled:        10 + i,
			MissingCount:  i,
			OutputPath:    "output/DailyReport.xlsx",
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
		if id <= 0 {
			t.Errorf("SaveRun %d returned id %d", i, id)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns returned %d runs, want 3", len(runs))
	}

	// Newest first.
	if runs[0].Filled != 12 || runs[2].Filled != 10 {
		t.Errorf("runs not newest-first: %+v", runs)
	}
	if !runs[0].Center.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Center roundtrip failed: %v", runs[0].Center)
	}
	if runs[0].MissingCount != 2 {
		t.Errorf("MissingCount = %d, want 2", runs[0].MissingCount)
	}

	limited, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns(1): %v", err)
	}
	if len(limited) != 1 || limited[0].Filled != 12 {
		t.Errorf("ListRuns(1) = %+v, want only the newest run", limited)
	}
}

func TestParquetStoreSamplePath(t *testing.T) {
	ps := NewParquetStore("/data")
	req := domain.ReportRequest{
		Center:        time.Date(2025, 12, 25, 1, 35, 0, 0, time.UTC),
		WindowMinutes: 30,
	}

	want := filepath.Join("/data", "samples", "20251225_0135_pm30.parquet")
	if got := ps.samplePath(req); got != want {
		t.Errorf("samplePath = %q, want %q", got, want)
	}
}

func TestParquetStoreWriteReadSamples(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	req := domain.ReportRequest{
		Center:        time.Date(2025, 12, 25, 1, 35, 0, 0, time.UTC),
		WindowMinutes: 30,
	}
	samples := []domain.Sample{
		{Name: "Boiler Temp", Time: req.Center.Add(-10 * time.Minute), Value: 80.5},
		{Name: "Boiler Temp", Time: req.Center, Value: 81.0},
		{Name: "Feed Flow", Time: req.Center, Value: 12.0},
	}

	if err := ps.WriteSamples(ctx, req, samples); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}

	got, err := ps.ReadSamples(ctx, req)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadSamples returned %d samples, want 3", len(got))
	}
	if got[0].Name != "Boiler Temp" || got[0].Value != 80.5 {
		t.Errorf("first sample = %+v", got[0])
	}
	if !got[0].Time.Equal(req.Center.Add(-10 * time.Minute)) {
		t.Errorf("timestamp roundtrip failed: %v", got[0].Time)
	}
}

func TestParquetStoreRewriteMerges(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	req := domain.ReportRequest{
		Center:        time.Date(2025, 12, 25, 1, 35, 0, 0, time.UTC),
		WindowMinutes: 30,
	}
	ts := req.Center

	first := []domain.Sample{{Name: "Boiler Temp", Time: ts, Value: 80.0}}
	if err := ps.WriteSamples(ctx, req, first); err != nil {
		t.Fatalf("first WriteSamples: %v", err)
	}

	// Same (name, timestamp) with a corrected value, plus a new series.
	second := []domain.Sample{
		{Name: "Boiler Temp", Time: ts, Value: 80.5},
		{Name: "Feed Flow", Time: ts, Value: 12.0},
	}
	if err := ps.WriteSamples(ctx, req, second); err != nil {
		t.Fatalf("second WriteSamples: %v", err)
	}

	got, err := ps.ReadSamples(ctx, req)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("merge should dedup by (name, timestamp): got %d records", len(got))
	}
	for _, s := range got {
		if s.Name == "Boiler Temp" && s.Value != 80.5 {
			t.Errorf("rewrite should prefer the newer value, got %v", s.Value)
		}
	}
}

func TestParquetStoreReadMissing(t *testing.T) {
	ps := NewParquetStore(t.TempDir())

	got, err := ps.ReadSamples(context.Background(), domain.ReportRequest{
		Center:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowMinutes: 30,
	})
	if err != nil {
		t.Fatalf("ReadSamples on missing snapshot should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no samples, got %d", len(got))
	}
}

package source

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const preamble = "Station Export v2\nSite,Plant A\nExported,2025-12-25\nInterval,1min\nUnits,mixed\n\n"

func TestReadSamplesMelt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", preamble+
		"no.,time,Boiler Temp,Feed Flow\n"+
		"1,2025-12-25 01:00:00,80.5,12\n"+
		"2,2025-12-25 01:01:00,81.0,13.5\n")

	samples, err := ReadSamples(filepath.Join(dir, "*.csv"), 6, discard())
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}

	// 2 rows x 2 value columns.
	if len(samples) != 4 {
		t.Fatalf("got %d samples, want 4", len(samples))
	}

	want := time.Date(2025, 12, 25, 1, 0, 0, 0, time.Local)
	if !samples[0].Time.Equal(want) {
		t.Errorf("first sample time = %v, want %v", samples[0].Time, want)
	}
	if samples[0].Name != "Boiler Temp" || samples[0].Value != 80.5 {
		t.Errorf("first sample = %+v, want Boiler Temp/80.5", samples[0])
	}
	if samples[1].Name != "Feed Flow" || samples[1].Value != 12 {
		t.Errorf("second sample = %+v, want Feed Flow/12", samples[1])
	}
}

func TestReadSamplesBOM(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bom.csv", "\uFEFF"+preamble+
		"no.,time,Pressure\n"+
		"1,2025-12-25 02:00:00,3.2\n")

	samples, err := ReadSamples(filepath.Join(dir, "*.csv"), 6, discard())
	if err != nil {
		t.Fatalf("ReadSamples with BOM: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if samples[0].Name != "Pressure" {
		t.Errorf("BOM should not corrupt the header: got name %q", samples[0].Name)
	}
}

func TestReadSamplesDropsBadRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", preamble+
		"no.,time,Temp\n"+
		"1,not-a-time,80\n"+ // dropped: bad timestamp
		"2,2025-12-25 01:00:00,offline\n"+ // dropped: non-numeric value
		"3,2025-12-25 01:01:00,82\n")

	samples, err := ReadSamples(filepath.Join(dir, "*.csv"), 6, discard())
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if samples[0].Value != 82 {
		t.Errorf("surviving sample value = %v, want 82", samples[0].Value)
	}
}

func TestReadSamplesSkipsFileWithoutTimeColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notime.csv", preamble+
		"no.,stamp,Temp\n"+
		"1,2025-12-25 01:00:00,80\n")
	writeFile(t, dir, "ok.csv", preamble+
		"no.,time,Temp\n"+
		"1,2025-12-25 01:00:00,80\n")

	samples, err := ReadSamples(filepath.Join(dir, "*.csv"), 6, discard())
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(samples) != 1 {
		t.Errorf("file without time column should be skipped, not fatal; got %d samples", len(samples))
	}
}

func TestReadSamplesNoFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadSamples(filepath.Join(dir, "*.csv"), 6, discard()); err == nil {
		t.Fatal("expected error when no files match the glob")
	}
}

func TestReadSamplesNoValidData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.csv", preamble+"no.,time,Temp\n")

	if _, err := ReadSamples(filepath.Join(dir, "*.csv"), 6, discard()); err == nil {
		t.Fatal("expected error when every file parses to zero samples")
	}
}

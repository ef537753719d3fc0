// Package workbook wraps the Excel side of the report: loading the mapping
// sheet, picking the target worksheet in the template, merged-cell-safe
// writes, and saving the filled copy.
package workbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dailyreport/internal/domain"
	"dailyreport/internal/util"
)

// Template is an open report template bound to its picked worksheet.
type Template struct {
	f      *excelize.File
	Sheet  string
	merges []mergeRange
}

type mergeRange struct {
	startCol, startRow int
	endCol, endRow     int
	start              string // top-left cell name
}

// OpenTemplate opens the template workbook and picks the worksheet to fill.
// Sheet selection: exact match on the preferred name after normalization
// (lowercase, all whitespace stripped), then the first sheet whose name
// contains "CN", then an error listing what the template actually has.
func OpenTemplate(path, preferredSheet string) (*Template, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening template %s: %w", path, err)
	}

	sheet, err := pickSheet(f.GetSheetList(), preferredSheet)
	if err != nil {
		f.Close()
		return nil, err
	}

	t := &Template{f: f, Sheet: sheet}
	if err := t.loadMerges(); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// Close releases the underlying workbook.
func (t *Template) Close() error {
	return t.f.Close()
}

func (t *Template) loadMerges() error {
	cells, err := t.f.GetMergeCells(t.Sheet)
	if err != nil {
		return fmt.Errorf("reading merged ranges of %s: %w", t.Sheet, err)
	}
	for _, mc := range cells {
		sc, sr, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return err
		}
		ec, er, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return err
		}
		t.merges = append(t.merges, mergeRange{
			startCol: sc, startRow: sr,
			endCol: ec, endRow: er,
			start: mc.GetStartAxis(),
		})
	}
	return nil
}

// SetCell writes a value at addr. A write addressed anywhere inside a merged
// range is redirected to the range's top-left cell, which is the one Excel
// displays.
func (t *Template) SetCell(addr string, value any) error {
	col, row, err := excelize.CellNameToCoordinates(addr)
	if err != nil {
		return fmt.Errorf("bad target cell %q: %w", addr, err)
	}

	for _, m := range t.merges {
		if col >= m.startCol && col <= m.endCol && row >= m.startRow && row <= m.endRow {
			return t.f.SetCellValue(t.Sheet, m.start, value)
		}
	}
	return t.f.SetCellValue(t.Sheet, addr, value)
}

// CellValue returns the formatted value at addr on the picked sheet.
func (t *Template) CellValue(addr string) (string, error) {
	return t.f.GetCellValue(t.Sheet, addr)
}

// WriteStamps writes the report date/time into the template. When explicit
// cells are configured they are used (merged-cell safe); when none are, the
// stamps go to A1-A3 as labelled lines, skipping cells that already hold
// content so templates with their own headers are left alone.
func (t *Template) WriteStamps(dateCell, timeCell, dateTimeCell string, req domain.ReportRequest, now time.Time) error {
	dateStr := req.Center.Format("2006-01-02")
	timeStr := req.Center.Format("15:04")
	dtStr := req.Center.Format("2006-01-02 15:04")
	winStr := req.Start().Format("2006-01-02 15:04:05") + " ~ " + req.End().Format("2006-01-02 15:04:05")

	if dateTimeCell != "" {
		if err := t.SetCell(dateTimeCell, dtStr); err != nil {
			return err
		}
	}
	if dateCell != "" {
		if err := t.SetCell(dateCell, dateStr); err != nil {
			return err
		}
	}
	if timeCell != "" {
		if err := t.SetCell(timeCell, timeStr); err != nil {
			return err
		}
	}

	if dateCell != "" || timeCell != "" || dateTimeCell != "" {
		return nil
	}

	defaults := []struct {
		addr, text string
	}{
		{"A1", "Report Time: " + dtStr},
		{"A2", "Window: " + winStr},
		{"A3", "Generated: " + now.Format("2006-01-02 15:04:05")},
	}
	for _, d := range defaults {
		existing, err := t.CellValue(d.addr)
		if err != nil {
			return err
		}
		if existing != "" {
			continue
		}
		if err := t.SetCell(d.addr, d.text); err != nil {
			return err
		}
	}
	return nil
}

// SaveAs writes the filled workbook to path, creating the parent directory.
// The save is retried with backoff: on Windows the previous output is often
// still open in Excel and holds a write lock for a moment after closing.
func (t *Template) SaveAs(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		return t.f.SaveAs(path)
	})
}

// ---------------------------------------------------------------------------
// Sheet selection
// ---------------------------------------------------------------------------

// normalizeSheetName lowercases and strips all whitespace so that
// "Daily Rev0 (+CN)" and "daily rev0(+cn)" compare equal.
func normalizeSheetName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

func pickSheet(names []string, preferred string) (string, error) {
	want := normalizeSheetName(preferred)
	for _, n := range names {
		if normalizeSheetName(n) == want {
			return n, nil
		}
	}

	for _, n := range names {
		if strings.Contains(strings.ToUpper(n), "CN") {
			return n, nil
		}
	}

	return "", fmt.Errorf("no suitable worksheet: wanted %q, template has %v", preferred, names)
}

// ---------------------------------------------------------------------------
// Mapping workbook
// ---------------------------------------------------------------------------

// mappingSheet is the fixed sheet name the mapping workbook uses.
const mappingSheet = "Map"

// LoadMapping reads the mapping workbook: sheet "Map" with header columns
// SourceName and TargetCell (required) and Agg (optional, default LAST).
// Rows with a blank SourceName are skipped.
func LoadMapping(path string) ([]domain.MappingEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(mappingSheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", mappingSheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("mapping sheet %q of %s is empty", mappingSheet, path)
	}

	srcIdx, cellIdx, aggIdx := -1, -1, -1
	for i, col := range rows[0] {
		switch strings.TrimSpace(col) {
		case "SourceName":
			srcIdx = i
		case "TargetCell":
			cellIdx = i
		case "Agg":
			aggIdx = i
		}
	}
	if srcIdx < 0 {
		return nil, fmt.Errorf("mapping sheet %q must contain column SourceName", mappingSheet)
	}
	if cellIdx < 0 {
		return nil, fmt.Errorf("mapping sheet %q must contain column TargetCell", mappingSheet)
	}

	var entries []domain.MappingEntry
	for _, row := range rows[1:] {
		get := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		src := get(srcIdx)
		if src == "" {
			continue
		}
		entries = append(entries, domain.MappingEntry{
			SourceName: src,
			TargetCell: get(cellIdx),
			Agg:        domain.ParseAggregation(get(aggIdx)),
		})
	}

	return entries, nil
}

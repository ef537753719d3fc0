// Package source reads the exported measurement CSVs and melts them into
// the long Time/Name/Value form the report pipeline consumes.
//
// The export format is fixed by the upstream historian: a handful of
// metadata lines, then a header row with a "no." counter column, a "time"
// column, and one column per measurement point. Files arrive UTF-8 with a
// BOM more often than not.
package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"dailyreport/internal/domain"
)

// Layouts accepted for the time column. The historian writes the first
// form; the rest are tolerated for hand-edited files.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	time.RFC3339,
}

// ReadSamples reads every file matching glob (sorted by name), melts each
// into long-format samples, and concatenates the results. Files without a
// usable time column or without value columns are skipped with a warning.
// It is an error when no file matches, or when no file yields any sample.
func ReadSamples(glob string, metadataRows int, logger *slog.Logger) ([]domain.Sample, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("bad sources glob %q: %w", glob, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files match %s", glob)
	}
	sort.Strings(files)

	var all []domain.Sample
	for _, path := range files {
		logger.Info("reading source file", "path", path)

		samples, err := readFile(path, metadataRows, logger)
		if err != nil {
			return nil, err
		}
		all = append(all, samples...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no valid samples in any file matching %s", glob)
	}
	return all, nil
}

// readFile melts a single CSV file. Structural problems (missing time
// column, no value columns) skip the file; only I/O and CSV syntax errors
// are fatal.
func readFile(path string, metadataRows int, logger *slog.Logger) ([]domain.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV %s: %w", path, err)
	}
	defer f.Close()

	// BOMOverride strips a UTF-8 BOM and transparently decodes UTF-16
	// exports, both of which the historian has been seen to produce.
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	for i := 0; i < metadataRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				logger.Warn("file shorter than metadata preamble, skipping", "path", path)
				return nil, nil
			}
			return nil, fmt.Errorf("skipping metadata in %s: %w", path, err)
		}
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			logger.Warn("no header row after metadata, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	timeIdx := -1
	valueIdx := make([]int, 0, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		switch strings.ToLower(name) {
		case "time":
			timeIdx = i
		case "no.", "":
			// counter / padding columns carry no data
		default:
			valueIdx = append(valueIdx, i)
		}
	}

	if timeIdx < 0 {
		logger.Warn("no time column, skipping file", "path", path, "columns", header)
		return nil, nil
	}
	if len(valueIdx) == 0 {
		logger.Warn("no value columns, skipping file", "path", path)
		return nil, nil
	}

	var samples []domain.Sample
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if timeIdx >= len(row) {
			continue
		}

		ts, ok := parseTime(row[timeIdx])
		if !ok {
			// Rows without a parseable timestamp are dropped.
			continue
		}

		for _, i := range valueIdx {
			if i >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				// Non-numeric cells (blanks, status text) are dropped; the
				// aggregations only ever consume numeric values.
				continue
			}
			samples = append(samples, domain.Sample{
				Time:  ts,
				Name:  strings.TrimSpace(header[i]),
				Value: v,
			})
		}
	}

	return samples, nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

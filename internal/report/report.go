// Package report runs the fill pipeline: mapping + source CSVs in, a filled
// copy of the Excel template out.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"dailyreport/internal/config"
	"dailyreport/internal/domain"
	"dailyreport/internal/source"
	"dailyreport/internal/workbook"
)

// Fill generates one report for the requested window. It returns the run
// summary and the in-window samples (so callers can archive them without
// re-reading the sources).
func Fill(ctx context.Context, cfg config.Report, req domain.ReportRequest, logger *slog.Logger) (*domain.RunSummary, []domain.Sample, error) {
	entries, err := workbook.LoadMapping(cfg.MappingPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("mapping loaded", "rows", len(entries))

	samples, err := source.ReadSamples(cfg.SourcesGlob, cfg.MetadataRows, logger)
	if err != nil {
		return nil, nil, err
	}

	window := FilterWindow(samples, req)
	if len(window) == 0 {
		logger.Warn("no samples inside the window; widen the minutes or check the report time",
			"start", req.Start(), "end", req.End())
	}

	tmpl, err := workbook.OpenTemplate(cfg.TemplatePath, cfg.PreferredSheet)
	if err != nil {
		return nil, nil, err
	}
	defer tmpl.Close()
	logger.Info("using worksheet", "sheet", tmpl.Sheet)

	now := time.Now()
	if err := tmpl.WriteStamps(cfg.DateCell, cfg.TimeCell, cfg.DateTimeCell, req, now); err != nil {
		return nil, nil, fmt.Errorf("writing report stamps: %w", err)
	}

	filled := 0
	var missing []string
	for _, e := range entries {
		matched := MatchSamples(window, e.SourceName)
		v, ok := Aggregate(matched, e.Agg)
		if !ok {
			if err := tmpl.SetCell(e.TargetCell, cfg.FillIfMissing); err != nil {
				return nil, nil, fmt.Errorf("filling %s for %q: %w", e.TargetCell, e.SourceName, err)
			}
			missing = append(missing, e.SourceName)

			if cands := MissCandidates(window, e.SourceName, cfg.MissCandidates); len(cands) > 0 {
				logger.Info("no data for mapping entry", "source", e.SourceName, "candidates", cands)
			} else {
				logger.Info("no data for mapping entry", "source", e.SourceName)
			}
			continue
		}

		if err := tmpl.SetCell(e.TargetCell, v); err != nil {
			return nil, nil, fmt.Errorf("filling %s for %q: %w", e.TargetCell, e.SourceName, err)
		}
		filled++
	}

	outPath := filepath.Join(cfg.OutputDir, OutputName(req))
	if err := tmpl.SaveAs(ctx, outPath); err != nil {
		return nil, nil, fmt.Errorf("saving report: %w", err)
	}

	return &domain.RunSummary{
		Center:        req.Center,
		WindowMinutes: req.WindowMinutes,
		Sheet:         tmpl.Sheet,
		Filled:        filled,
		Missing:       missing,
		OutputPath:    outPath,
		GeneratedAt:   now,
	}, window, nil
}

// OutputName is the file name a report for the given request is saved
// under: DailyReport_<yyyymmdd_hhmm>_pm<minutes>.xlsx, where pm reads
// "plus/minus".
func OutputName(req domain.ReportRequest) string {
	return fmt.Sprintf("DailyReport_%s_pm%d.xlsx", req.Center.Format("20060102_1504"), req.WindowMinutes)
}

// report-history inspects the run archive: the SQLite log of generated
// reports and the Parquet snapshots of the samples behind them.
//
// Usage:
//
//	report-history list [-limit N]
//	report-history samples -time "2025-12-25 01:35" -minutes 30
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"dailyreport/internal/config"
	"dailyreport/internal/domain"
	"dailyreport/internal/store"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: report-history <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list       List archived report runs (newest first)\n")
		fmt.Fprintf(os.Stderr, "  samples    Dump the archived samples of one run's window\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfgPath := "report.yaml"
	if p := os.Getenv("REPORT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		limit := fs.Int("limit", 20, "maximum runs to show; 0 shows all")
		fs.Parse(os.Args[2:])
		listRuns(ctx, cfg, *limit)

	case "samples":
		fs := flag.NewFlagSet("samples", flag.ExitOnError)
		timeStr := fs.String("time", "", "report time of the run (YYYY-MM-DD HH:MM)")
		minutes := fs.Int("minutes", 30, "window half-width of the run in minutes")
		fs.Parse(os.Args[2:])
		dumpSamples(ctx, cfg, *timeStr, *minutes)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func listRuns(ctx context.Context, cfg *config.Config, limit int) {
	s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening run log: %v", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(ctx, limit)
	if err != nil {
		log.Fatalf("listing runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return
	}

	fmt.Printf("%-4s  %-16s  %5s  %6s  %7s  %s\n", "ID", "CENTER", "PM", "FILLED", "MISSING", "OUTPUT")
	for _, r := range runs {
		fmt.Printf("%-4d  %-16s  %5d  %6d  %7d  %s\n",
			r.ID, r.Center.Format("2006-01-02 15:04"), r.WindowMinutes, r.Filled, r.MissingCount, r.OutputPath)
	}
}

func dumpSamples(ctx context.Context, cfg *config.Config, timeStr string, minutes int) {
	if timeStr == "" {
		log.Fatal("samples requires -time")
	}
	center, err := domain.ParseCenterTime(timeStr)
	if err != nil {
		log.Fatalf("bad -time: %v", err)
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	samples, err := ps.ReadSamples(ctx, domain.ReportRequest{Center: center, WindowMinutes: minutes})
	if err != nil {
		log.Fatalf("reading samples: %v", err)
	}
	if len(samples) == 0 {
		fmt.Println("no archived samples for that window")
		return
	}

	for _, s := range samples {
		fmt.Printf("%s  %-40s  %g\n", s.Time.Format("2006-01-02 15:04:05"), s.Name, s.Value)
	}
	fmt.Printf("\n%d samples\n", len(samples))
}

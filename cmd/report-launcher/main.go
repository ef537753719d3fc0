// report-launcher is the legacy entry point for installations still running
// the external Python generator. It checks that an interpreter is on PATH,
// runs the configured script with no arguments from the launcher's own
// directory, and keeps the console open so double-click users can read the
// output.
//
// It intentionally mirrors the old batch file: the delegate's exit status is
// not inspected and the launcher sets no exit code of its own.
package main

import (
	"context"
	"log"
	"os"

	"dailyreport/internal/config"
	"dailyreport/internal/launcher"
)

func main() {
	cfgPath := "report.yaml"
	if p := os.Getenv("REPORT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l := launcher.New(cfg.Launcher.Probe, cfg.Launcher.Delegate, cfg.Launcher.DownloadURL)

	// ErrInterpreterNotFound was already reported on the console, keypress
	// included; the process just ends.
	_ = l.Run(context.Background())
}

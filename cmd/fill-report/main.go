// fill-report is the double-click entry point: it prompts for the report
// time and window, fills the Excel template from the source CSVs, archives
// the run, and holds the console open until the operator presses Enter.
//
// Usage:
//
//	fill-report                          # interactive
//	fill-report -time "2025-12-25 01:35" -minutes 30 -no-pause
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"dailyreport/internal/config"
	"dailyreport/internal/domain"
	"dailyreport/internal/launcher"
	"dailyreport/internal/report"
	"dailyreport/internal/store"
	"dailyreport/internal/util"
)

var (
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	pathStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// maxMissingShown caps the missing-items list on the console; the full list
// is in the run log.
const maxMissingShown = 30

func main() {
	timeFlag := flag.String("time", "", "report time (YYYY-MM-DD HH:MM); prompts when empty")
	minutesFlag := flag.Int("minutes", -1, "window half-width in minutes; prompts when negative")
	noPause := flag.Bool("no-pause", false, "skip the final keypress (for scripted runs)")
	noChdir := flag.Bool("no-chdir", false, "stay in the caller's working directory")
	flag.Parse()

	launcher.ConfigureConsole()

	if !*noChdir {
		if _, err := launcher.ChdirToExecutable(); err != nil {
			fmt.Printf("[WARN] 無法切換到程式所在目錄：%v\n", err)
		}
	}

	cfgPath := "report.yaml"
	if p := os.Getenv("REPORT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLoggerTo(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	stdin := bufio.NewReader(os.Stdin)

	center := resolveCenter(stdin, *timeFlag)
	minutes := *minutesFlag
	if minutes < 0 {
		minutes = resolveMinutes(stdin, cfg.Report.DefaultWindowMinutes)
	}
	req := domain.ReportRequest{Center: center, WindowMinutes: minutes}

	fmt.Printf("抓取範圍：%s ~ %s\n",
		req.Start().Format("2006-01-02 15:04:05"),
		req.End().Format("2006-01-02 15:04:05"))

	ctx := context.Background()

	sum, window, err := report.Fill(ctx, cfg.Report, req, logger)
	if err != nil {
		fmt.Println(errStyle.Render("[ERROR] " + err.Error()))
		pause(stdin, *noPause)
		os.Exit(1)
	}

	archiveRun(ctx, cfg.Storage, sum, window)

	printSummary(sum)
	pause(stdin, *noPause)
}

// resolveCenter takes the -time flag or prompts until the operator enters a
// parseable report time. Typos re-prompt instead of aborting the run.
func resolveCenter(stdin *bufio.Reader, flagValue string) time.Time {
	if flagValue != "" {
		t, err := domain.ParseCenterTime(flagValue)
		if err != nil {
			log.Fatalf("bad -time: %v", err)
		}
		return t
	}

	for {
		fmt.Print("請輸入要填表的時間 (YYYY-MM-DD HH:MM): ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			log.Fatalf("reading input: %v", err)
		}
		t, perr := domain.ParseCenterTime(line)
		if perr != nil {
			fmt.Println(errStyle.Render("[ERROR] " + perr.Error()))
			continue
		}
		return t
	}
}

// resolveMinutes prompts for the window half-width. Empty input takes the
// configured default; negatives and non-integers re-prompt.
func resolveMinutes(stdin *bufio.Reader, def int) int {
	for {
		fmt.Printf("請輸入抓取區間(分鐘，表示前後各幾分鐘，預設 %d): ", def)
		line, err := stdin.ReadString('\n')
		if err != nil {
			log.Fatalf("reading input: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return def
		}
		n, perr := strconv.Atoi(line)
		if perr != nil || n < 0 {
			fmt.Println(errStyle.Render("[ERROR] 分鐘輸入錯誤，請輸入非負整數，例如 30。"))
			continue
		}
		return n
	}
}

// archiveRun records the run in SQLite and snapshots the windowed samples
// to Parquet. Archival is best-effort: a failure is logged, the report on
// disk is already good.
func archiveRun(ctx context.Context, cfg config.Storage, sum *domain.RunSummary, window []domain.Sample) {
	rs, err := store.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		fmt.Printf("[WARN] 無法開啟執行紀錄資料庫：%v\n", err)
	} else {
		defer rs.Close()
		_, err := rs.SaveRun(ctx, &store.RunRecord{
			Center:        sum.Center,
			WindowMinutes: sum.WindowMinutes,
			Sheet:         sum.Sheet,
			Filled:        sum.Filled,
			MissingCount:  len(sum.Missing),
			OutputPath:    sum.OutputPath,
			CreatedAt:     sum.GeneratedAt,
		})
		if err != nil {
			fmt.Printf("[WARN] 無法寫入執行紀錄：%v\n", err)
		}
	}

	ps := store.NewParquetStore(cfg.DataDir)
	req := domain.ReportRequest{Center: sum.Center, WindowMinutes: sum.WindowMinutes}
	if err := ps.WriteSamples(ctx, req, window); err != nil {
		fmt.Printf("[WARN] 無法封存時間窗資料：%v\n", err)
	}
}

func printSummary(sum *domain.RunSummary) {
	fmt.Println()
	fmt.Println(bannerStyle.Render(fmt.Sprintf("完成：寫入 %d 項", sum.Filled)))

	if len(sum.Missing) > 0 {
		fmt.Println(missStyle.Render("以下品項在此時間範圍找不到資料（已填入預設值，請確認名稱或時間範圍）："))
		shown := sum.Missing
		if len(shown) > maxMissingShown {
			shown = shown[:maxMissingShown]
		}
		for _, name := range shown {
			fmt.Println(" -", name)
		}
		if len(sum.Missing) > maxMissingShown {
			fmt.Printf(" ...（共 %d 項）\n", len(sum.Missing))
		}
	}

	fmt.Println()
	fmt.Println("輸出檔：", pathStyle.Render(sum.OutputPath))
}

// pause keeps a double-clicked console window open until Enter.
func pause(stdin *bufio.Reader, skip bool) {
	if skip {
		return
	}
	fmt.Print("\n請按 Enter 鍵結束...")
	_, _ = stdin.ReadString('\n')
}

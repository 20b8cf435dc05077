// Command breadth-report generates an offline market breadth report
// (Excel or CSV) from the sentiment CSV, without running the server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"breadthpulse/internal/breadth"
	"breadthpulse/internal/config"
	"breadthpulse/internal/exporter"
)

func main() {
	dataFile := flag.String("data", "market_sentiment_indices.csv", "path to the sentiment CSV")
	outFlag := flag.String("out", "", "output directory for the report (defaults to the configured exports dir)")
	format := flag.String("format", "xlsx", "report format: xlsx or csv")
	fromStr := flag.String("from", "", "range start YYYY-MM-DD (defaults to earliest date)")
	toStr := flag.String("to", "", "range end YYYY-MM-DD (defaults to latest date)")
	dayStr := flag.String("day", "", "also include a single-day report for this date")
	index := flag.String("index", "", "index filter for the single-day report")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tbl, err := breadth.Load(*dataFile, logger)
	if err != nil {
		logger.Error("failed to load sentiment data", "path", *dataFile, "error", err)
		os.Exit(1)
	}
	if tbl.Empty() {
		logger.Error("sentiment data contains no rows", "path", *dataFile)
		os.Exit(1)
	}
	logger.Info("sentiment data loaded",
		"rows", tbl.Len(),
		"trading_days", len(tbl.Dates()))

	from, to, err := resolveRange(tbl, *fromStr, *toStr)
	if err != nil {
		logger.Error("invalid date range", "error", err)
		os.Exit(1)
	}

	outDir := resolveOutDir(*outFlag)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		logger.Error("failed to create output directory", "path", outDir, "error", err)
		os.Exit(1)
	}

	counts := breadth.BucketCounts(tbl, from, to)
	metrics := breadth.DailyMetrics(tbl, from, to)
	name := fmt.Sprintf("breadth_trend_%s_%s",
		from.Format(breadth.DateFormat), to.Format(breadth.DateFormat))

	switch *format {
	case "csv":
		path := filepath.Join(outDir, name+".csv")
		if err := writeCSVReport(path, counts, metrics); err != nil {
			logger.Error("failed to write csv report", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("trend report written", "path", path, "days", len(metrics))
	case "xlsx":
		path := filepath.Join(outDir, name+".xlsx")
		f, err := exporter.BuildTrendWorkbook(counts, metrics)
		if err != nil {
			logger.Error("failed to build workbook", "error", err)
			os.Exit(1)
		}
		if err := f.SaveAs(path); err != nil {
			f.Close()
			logger.Error("failed to save workbook", "path", path, "error", err)
			os.Exit(1)
		}
		f.Close()
		logger.Info("trend report written", "path", path, "days", len(metrics))
	default:
		logger.Error("unknown format, expected xlsx or csv", "format", *format)
		os.Exit(1)
	}

	if *dayStr != "" {
		if err := writeDayReport(tbl, *dayStr, *index, outDir, *format, logger); err != nil {
			logger.Error("failed to write day report", "date", *dayStr, "error", err)
			os.Exit(1)
		}
	}
}

// resolveOutDir prefers the -out flag, then falls back to the exports
// directory from the server configuration so CLI reports land next to
// the web UI's downloads.
func resolveOutDir(flagged string) string {
	if flagged != "" {
		return flagged
	}
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	return cfg.GetExportsDir()
}

func resolveRange(tbl *breadth.Table, fromStr, toStr string) (from, to time.Time, err error) {
	from = tbl.MinDate()
	to = tbl.MaxDate()
	if fromStr != "" {
		if from, err = time.Parse(breadth.DateFormat, fromStr); err != nil {
			return from, to, fmt.Errorf("parsing -from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(breadth.DateFormat, toStr); err != nil {
			return from, to, fmt.Errorf("parsing -to: %w", err)
		}
	}
	if from.After(to) {
		return from, to, fmt.Errorf("range start %s is after end %s",
			from.Format(breadth.DateFormat), to.Format(breadth.DateFormat))
	}
	return from, to, nil
}

func writeCSVReport(path string, counts []breadth.BucketCount, metrics []breadth.DailyMetric) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return exporter.WriteTrendCSV(f, counts, metrics)
}

func writeDayReport(tbl *breadth.Table, dayStr, index, outDir, format string, logger *slog.Logger) error {
	day, err := time.Parse(breadth.DateFormat, dayStr)
	if err != nil {
		return fmt.Errorf("parsing -day: %w", err)
	}

	snap, err := breadth.Snapshot(tbl, day, index)
	if err != nil {
		return err
	}
	if snap.Warning != "" {
		logger.Warn("index filter unavailable", "index", index, "warning", snap.Warning)
	}

	name := "breadth_day_" + snap.Date
	switch format {
	case "csv":
		path := filepath.Join(outDir, name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := exporter.WriteDayCSV(f, snap); err != nil {
			return err
		}
		logger.Info("day report written", "path", path)
	default:
		path := filepath.Join(outDir, name+".xlsx")
		wb, err := exporter.BuildDayWorkbook(snap)
		if err != nil {
			return err
		}
		defer wb.Close()
		if err := wb.SaveAs(path); err != nil {
			return err
		}
		logger.Info("day report written", "path", path)
	}
	return nil
}

package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"breadthpulse/internal/breadth"
)

const (
	trendSheet   = "Trend"
	metricsSheet = "Metrics"
	daySheet     = "Day"
)

// headerStyle builds a bold header cell filled with the bucket color
func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(color, "#")},
		},
	})
}

// BuildTrendWorkbook creates a workbook with a bucket-count sheet and a
// daily-metrics sheet. Bucket header cells carry their chart colors.
func BuildTrendWorkbook(counts []breadth.BucketCount, metrics []breadth.DailyMetric) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", trendSheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(metricsSheet); err != nil {
		return nil, fmt.Errorf("creating metrics sheet: %w", err)
	}

	if err := writeTrendSheet(f, counts, metrics); err != nil {
		return nil, err
	}
	if err := writeMetricsSheet(f, metrics); err != nil {
		return nil, err
	}
	return f, nil
}

func writeTrendSheet(f *excelize.File, counts []breadth.BucketCount, metrics []breadth.DailyMetric) error {
	if err := f.SetCellValue(trendSheet, "A1", "date"); err != nil {
		return err
	}
	for i, b := range breadth.Buckets() {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(trendSheet, cell, b.String()); err != nil {
			return err
		}
		style, err := headerStyle(f, b.Color())
		if err != nil {
			return fmt.Errorf("building style for %s: %w", b.String(), err)
		}
		if err := f.SetCellStyle(trendSheet, cell, cell, style); err != nil {
			return err
		}
	}

	_, byDate := pivotCounts(counts)
	for rowIdx, m := range metrics {
		rowNum := rowIdx + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(trendSheet, cell, m.Date); err != nil {
			return err
		}
		row := byDate[m.Date]
		for col := 0; col < breadth.NumBuckets; col++ {
			cell, err := excelize.CoordinatesToCellName(col+2, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(trendSheet, cell, row[col]); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(trendSheet, "A", "A", 12)
}

func writeMetricsSheet(f *excelize.File, metrics []breadth.DailyMetric) error {
	header := []string{"date", "median_pct", "up", "down", "net", "cum_net"}
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(metricsSheet, cell, h); err != nil {
			return err
		}
	}

	for rowIdx, m := range metrics {
		rowNum := rowIdx + 2
		values := []interface{}{m.Date, m.MedianPct, m.Up, m.Down, m.Net, m.CumNet}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(metricsSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(metricsSheet, "A", "A", 12)
}

// BuildDayWorkbook creates a single-sheet workbook for one day's snapshot
func BuildDayWorkbook(snap *breadth.DaySnapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", daySheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	title := snap.Date
	if snap.Index != "" {
		title += " " + snap.Index
	}
	rows := [][]interface{}{{title, ""}, {"bucket", "count"}}
	for _, c := range snap.Counts {
		rows = append(rows, []interface{}{c.Bucket, c.Count})
	}
	rows = append(rows,
		[]interface{}{"up", snap.Up},
		[]interface{}{"down", snap.Down},
		[]interface{}{"limit_up", snap.LimitUp},
		[]interface{}{"limit_down", snap.LimitDown},
	)

	for rowIdx, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(daySheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, f.SetColWidth(daySheet, "A", "A", 14)
}

// Package exporter renders breadth aggregates as downloadable CSV and
// Excel files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"breadthpulse/internal/breadth"
)

// utf8BOM helps Excel recognize UTF-8, needed for the Chinese index names
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// formatFloat formats a percentage value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// trendHeader is the wide layout: one row per day, one column per bucket,
// then the daily metrics.
func trendHeader() []string {
	header := []string{"date"}
	for _, b := range breadth.Buckets() {
		header = append(header, b.String())
	}
	return append(header, "median_pct", "up", "down", "net", "cum_net")
}

// pivotCounts folds the sparse count series into per-date rows in fixed
// bucket order. Dates keep the order they first appear in, which is
// ascending by construction.
func pivotCounts(counts []breadth.BucketCount) (dates []string, byDate map[string][breadth.NumBuckets]int) {
	byDate = make(map[string][breadth.NumBuckets]int)
	for _, c := range counts {
		row, ok := byDate[c.Date]
		if !ok {
			dates = append(dates, c.Date)
		}
		b, valid := breadth.ParseBucket(c.Bucket)
		if !valid {
			continue
		}
		row[int(b)] = c.Count
		byDate[c.Date] = row
	}
	return dates, byDate
}

// WriteTrendCSV writes the trend aggregates as one wide CSV table
func WriteTrendCSV(w io.Writer, counts []breadth.BucketCount, metrics []breadth.DailyMetric) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(trendHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	_, byDate := pivotCounts(counts)
	for _, m := range metrics {
		record := []string{m.Date}
		row := byDate[m.Date]
		for i := 0; i < breadth.NumBuckets; i++ {
			record = append(record, formatInt(row[i]))
		}
		record = append(record,
			formatFloat(m.MedianPct),
			formatInt(m.Up),
			formatInt(m.Down),
			formatInt(m.Net),
			formatInt(m.CumNet),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record for %s: %w", m.Date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDayCSV writes a single-day snapshot: one row per bucket plus a
// summary row with the limit counts.
func WriteDayCSV(w io.Writer, snap *breadth.DaySnapshot) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"bucket", "count"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, c := range snap.Counts {
		if err := cw.Write([]string{c.Bucket, formatInt(c.Count)}); err != nil {
			return fmt.Errorf("writing bucket %s: %w", c.Bucket, err)
		}
	}

	summary := [][]string{
		{"up", formatInt(snap.Up)},
		{"down", formatInt(snap.Down)},
		{"limit_up", formatInt(snap.LimitUp)},
		{"limit_down", formatInt(snap.LimitDown)},
	}
	for _, record := range summary {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

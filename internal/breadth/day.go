package breadth

import (
	"errors"
	"fmt"
	"time"
)

// Regulatory daily price-move limits, approximated. Strict comparisons: a row
// at exactly 9.8 is not limit-up, and likewise for -9.8.
const (
	LimitUpThreshold   = 9.8
	LimitDownThreshold = -9.8
)

// ErrNoDataForDate signals that a selected day has zero rows. Non-fatal: the
// caller renders a warning in place of the day's chart and the rest of the
// page is unaffected.
var ErrNoDataForDate = errors.New("no data for date")

// DayBucketCount is one bar of the single-day distribution chart. Unlike the
// trend series, every one of the eight buckets appears, with explicit zeros,
// so the axis stays visually comparable across days.
type DayBucketCount struct {
	Bucket string `json:"bucket"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

// DaySnapshot is the single-day distribution plus its summary statistics.
// Warning is set when a requested index filter had no matching column and the
// snapshot fell back to all stocks.
type DaySnapshot struct {
	Date      string           `json:"date"`
	Index     string           `json:"index,omitempty"`
	Counts    []DayBucketCount `json:"counts"`
	Up        int              `json:"up"`
	Down      int              `json:"down"`
	LimitUp   int              `json:"limit_up"`
	LimitDown int              `json:"limit_down"`
	Warning   string           `json:"warning,omitempty"`
}

// Total returns the number of rows behind the snapshot.
func (s *DaySnapshot) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c.Count
	}
	return n
}

// Snapshot aggregates one day's rows into the fixed eight-bucket distribution
// with up/down and limit-up/limit-down counts. It always draws from the full
// table, independent of any trend date-range selection.
//
// indexName restricts to rows flagged as members of that index; the empty
// string means all stocks. A name with no matching column falls back to the
// unfiltered set and sets Warning rather than producing an empty chart.
// A date with zero rows returns ErrNoDataForDate.
func Snapshot(t *Table, date time.Time, indexName string) (*DaySnapshot, error) {
	rows := t.RowsOn(date)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataForDate, date.Format(DateFormat))
	}

	snap := &DaySnapshot{
		Date:  date.Format(DateFormat),
		Index: indexName,
	}

	member := -1
	if indexName != "" {
		member = t.indexColumn(indexName)
		if member < 0 {
			snap.Warning = fmt.Sprintf("index %q has no membership column in the loaded data; showing all stocks", indexName)
		}
	}

	var counts [NumBuckets]int
	for _, r := range rows {
		if member >= 0 && !r.Memberships[member] {
			continue
		}
		if r.Bucket.Valid() {
			counts[r.Bucket]++
		}
		if r.PctChg > 0 {
			snap.Up++
		} else if r.PctChg < 0 {
			snap.Down++
		}
		if r.PctChg > LimitUpThreshold {
			snap.LimitUp++
		}
		if r.PctChg < LimitDownThreshold {
			snap.LimitDown++
		}
	}

	snap.Counts = make([]DayBucketCount, NumBuckets)
	for b := 0; b < NumBuckets; b++ {
		snap.Counts[b] = DayBucketCount{
			Bucket: Bucket(b).String(),
			Color:  Bucket(b).Color(),
			Count:  counts[b],
		}
	}

	return snap, nil
}

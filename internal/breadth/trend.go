package breadth

import (
	"sort"
	"time"
)

// Median bar colors keyed on the sign of the daily median. Zero is treated as
// non-positive and takes the down color.
const (
	MedianUpColor   = "#FF4D4D"
	MedianDownColor = "#00B300"
)

// BucketCount is one (date, bucket) cell of the historical distribution
// chart. The series is sparse: (date, bucket) pairs with zero rows are
// omitted, and the frontend pins the categorical axis to the fixed bucket
// order so the axis never collapses.
type BucketCount struct {
	Date   string `json:"date"`
	Bucket string `json:"bucket"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

// DailyMetric carries one day's breadth metrics for the logic-verification
// charts: the median daily change, advancing and declining counts, the net
// advance/decline and its running total over the selected range.
type DailyMetric struct {
	Date        string  `json:"date"`
	MedianPct   float64 `json:"median_pct"`
	MedianColor string  `json:"median_color"`
	Up          int     `json:"up"`
	Down        int     `json:"down"`
	Net         int     `json:"net"`
	CumNet      int     `json:"cum_net"`
}

// BucketCounts groups the rows with from <= date <= to by (date, bucket) and
// counts each group. Output is sorted by date ascending, then by the fixed
// bucket order. Unknown-bucket rows are excluded. An empty or inverted range
// yields an empty slice.
func BucketCounts(t *Table, from, to time.Time) []BucketCount {
	rows := t.Range(from, to)
	if len(rows) == 0 {
		return nil
	}

	var out []BucketCount
	for i := 0; i < len(rows); {
		j := i
		key := rows[i].DateString()
		var counts [NumBuckets]int
		for j < len(rows) && rows[j].DateString() == key {
			if rows[j].Bucket.Valid() {
				counts[rows[j].Bucket]++
			}
			j++
		}
		for b := 0; b < NumBuckets; b++ {
			if counts[b] == 0 {
				continue
			}
			out = append(out, BucketCount{
				Date:   key,
				Bucket: Bucket(b).String(),
				Color:  Bucket(b).Color(),
				Count:  counts[b],
			})
		}
		i = j
	}
	return out
}

// DailyMetrics computes per-date breadth metrics over the rows with
// from <= date <= to. Zero-change rows count as neither advancing nor
// declining. CumNet is the prefix sum of Net in ascending date order,
// restarting from zero at the start of the range; a single-date range
// degenerates to that date's own net. An empty range yields an empty slice.
func DailyMetrics(t *Table, from, to time.Time) []DailyMetric {
	rows := t.Range(from, to)
	if len(rows) == 0 {
		return nil
	}

	var out []DailyMetric
	cum := 0
	for i := 0; i < len(rows); {
		j := i
		key := rows[i].DateString()
		var changes []float64
		up, down := 0, 0
		for j < len(rows) && rows[j].DateString() == key {
			pct := rows[j].PctChg
			changes = append(changes, pct)
			if pct > 0 {
				up++
			} else if pct < 0 {
				down++
			}
			j++
		}

		net := up - down
		cum += net
		med := median(changes)
		color := MedianDownColor
		if med > 0 {
			color = MedianUpColor
		}

		out = append(out, DailyMetric{
			Date:        key,
			MedianPct:   med,
			MedianColor: color,
			Up:          up,
			Down:        down,
			Net:         net,
			CumNet:      cum,
		})
		i = j
	}
	return out
}

// median returns the middle value of vs, averaging the two central values for
// an even count. vs must be non-empty; it is copied before sorting.
func median(vs []float64) float64 {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

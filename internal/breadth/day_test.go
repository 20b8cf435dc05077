package breadth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dayTable builds a one-index table for snapshot tests. The membership flag
// applies to the named column for every row where member is true.
func dayTable(t *testing.T, indexName string, rows []Row) *Table {
	t.Helper()
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Date.Before(rows[j-1].Date); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	var cols []string
	if indexName != "" {
		cols = []string{indexName}
	}
	return newTable(rows, cols, 0)
}

func mustBucket(t *testing.T, label string) Bucket {
	t.Helper()
	b, ok := ParseBucket(label)
	require.True(t, ok, "label %q", label)
	return b
}

func TestSnapshotSpecExample(t *testing.T) {
	// Rows for 2024-01-02 = [+8.1, +2.0, -0.5, -9.9, 0.0].
	table := dayTable(t, "", []Row{
		{Date: date("2024-01-02"), PctChg: 8.1, Bucket: mustBucket(t, ">7%")},
		{Date: date("2024-01-02"), PctChg: 2.0, Bucket: mustBucket(t, "1~3%")},
		{Date: date("2024-01-02"), PctChg: -0.5, Bucket: mustBucket(t, "-1~0%")},
		{Date: date("2024-01-02"), PctChg: -9.9, Bucket: mustBucket(t, "<-7%")},
		{Date: date("2024-01-02"), PctChg: 0.0, Bucket: mustBucket(t, "0~1%")},
	})

	snap, err := Snapshot(table, date("2024-01-02"), "")
	require.NoError(t, err)

	want := map[string]int{">7%": 1, "1~3%": 1, "-1~0%": 1, "<-7%": 1, "0~1%": 1}
	require.Len(t, snap.Counts, NumBuckets) // all 8 buckets, zeros included
	for _, c := range snap.Counts {
		assert.Equal(t, want[c.Bucket], c.Count, "bucket %s", c.Bucket)
	}

	assert.Equal(t, 2, snap.Up)
	assert.Equal(t, 2, snap.Down)
	assert.Equal(t, 1, snap.LimitUp)
	assert.Equal(t, 1, snap.LimitDown)
	assert.Empty(t, snap.Warning)
	assert.Equal(t, 5, snap.Total())
}

func TestSnapshotAxisOrderAndColors(t *testing.T) {
	table := dayTable(t, "", []Row{
		{Date: date("2024-01-02"), PctChg: 0.5, Bucket: Bucket0To1},
	})

	snap, err := Snapshot(table, date("2024-01-02"), "")
	require.NoError(t, err)

	order := BucketOrder()
	for i, c := range snap.Counts {
		assert.Equal(t, order[i], c.Bucket)
		assert.Equal(t, ColorMap()[c.Bucket], c.Color)
	}
}

func TestSnapshotLimitThresholdsAreStrict(t *testing.T) {
	table := dayTable(t, "", []Row{
		{Date: date("2024-01-02"), PctChg: 9.8, Bucket: BucketAbove7},
		{Date: date("2024-01-02"), PctChg: 9.81, Bucket: BucketAbove7},
		{Date: date("2024-01-02"), PctChg: -9.8, Bucket: BucketBelow7},
		{Date: date("2024-01-02"), PctChg: -9.81, Bucket: BucketBelow7},
	})

	snap, err := Snapshot(table, date("2024-01-02"), "")
	require.NoError(t, err)

	// Exactly 9.8 is not limit-up; exactly -9.8 is not limit-down.
	assert.Equal(t, 1, snap.LimitUp)
	assert.Equal(t, 1, snap.LimitDown)
	assert.Equal(t, 2, snap.Up)
	assert.Equal(t, 2, snap.Down)
}

func TestSnapshotNoDataForDate(t *testing.T) {
	table := dayTable(t, "", []Row{
		{Date: date("2024-01-02"), PctChg: 1.0, Bucket: Bucket0To1},
	})

	_, err := Snapshot(table, date("2024-01-05"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDataForDate)
}

func TestSnapshotIndexFilter(t *testing.T) {
	table := dayTable(t, "沪深300", []Row{
		{Date: date("2024-01-02"), PctChg: 3.5, Bucket: Bucket3To7, Memberships: []bool{true}},
		{Date: date("2024-01-02"), PctChg: -1.5, Bucket: BucketNeg3To1, Memberships: []bool{false}},
		{Date: date("2024-01-02"), PctChg: 0.2, Bucket: Bucket0To1, Memberships: []bool{true}},
	})

	snap, err := Snapshot(table, date("2024-01-02"), "沪深300")
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Total())
	assert.Equal(t, 2, snap.Up)
	assert.Equal(t, 0, snap.Down)
	assert.Empty(t, snap.Warning)
	assert.Equal(t, "沪深300", snap.Index)
}

func TestSnapshotMissingFilterColumnFallsBack(t *testing.T) {
	table := dayTable(t, "沪深300", []Row{
		{Date: date("2024-01-02"), PctChg: 3.5, Bucket: Bucket3To7, Memberships: []bool{true}},
		{Date: date("2024-01-02"), PctChg: -1.5, Bucket: BucketNeg3To1, Memberships: []bool{false}},
	})

	filtered, err := Snapshot(table, date("2024-01-02"), "中证1000")
	require.NoError(t, err)
	unfiltered, err := Snapshot(table, date("2024-01-02"), "")
	require.NoError(t, err)

	// Same chart as all stocks plus a warning, never an empty chart.
	assert.NotEmpty(t, filtered.Warning)
	assert.Equal(t, unfiltered.Counts, filtered.Counts)
	assert.Equal(t, unfiltered.Up, filtered.Up)
	assert.Equal(t, unfiltered.Down, filtered.Down)
}

func TestSnapshotIndependentOfAnyRangeSelection(t *testing.T) {
	// The snapshot reads the full table; a date outside a trend range
	// selection must produce identical results either way. Ranging is a
	// pure view, so it suffices to check the snapshot after computing a
	// disjoint trend range.
	table := dayTable(t, "", []Row{
		{Date: date("2024-01-02"), PctChg: 1.0, Bucket: Bucket0To1},
		{Date: date("2024-03-15"), PctChg: -2.0, Bucket: BucketNeg3To1},
	})

	before, err := Snapshot(table, date("2024-03-15"), "")
	require.NoError(t, err)

	_ = DailyMetrics(table, date("2024-01-01"), date("2024-01-31"))

	after, err := Snapshot(table, date("2024-03-15"), "")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

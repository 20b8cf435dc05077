package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breadthpulse/internal/breadth"
)

func sampleTrend() ([]breadth.BucketCount, []breadth.DailyMetric) {
	counts := []breadth.BucketCount{
		{Date: "2024-01-02", Bucket: ">7%", Color: "#FF0000", Count: 1},
		{Date: "2024-01-02", Bucket: "1~3%", Color: "#FF9999", Count: 2},
		{Date: "2024-01-03", Bucket: "-7~-3%", Color: "#00B300", Count: 3},
	}
	metrics := []breadth.DailyMetric{
		{Date: "2024-01-02", MedianPct: 1.25, MedianColor: breadth.MedianUpColor, Up: 3, Down: 0, Net: 3, CumNet: 3},
		{Date: "2024-01-03", MedianPct: -4.2, MedianColor: breadth.MedianDownColor, Up: 0, Down: 3, Net: -3, CumNet: 0},
	}
	return counts, metrics
}

func TestWriteTrendCSV(t *testing.T) {
	counts, metrics := sampleTrend()

	var buf bytes.Buffer
	require.NoError(t, WriteTrendCSV(&buf, counts, metrics))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	require.Len(t, header, 1+breadth.NumBuckets+5)
	assert.Equal(t, "date", header[0])
	assert.Equal(t, ">7%", header[1])
	assert.Equal(t, "<-7%", header[8])
	assert.Equal(t, "cum_net", header[13])

	// 2024-01-02: one >7%, two 1~3%, zeros elsewhere
	assert.Equal(t, "2024-01-02", records[1][0])
	assert.Equal(t, "1", records[1][1])
	assert.Equal(t, "2", records[1][3])
	assert.Equal(t, "0", records[1][2])
	assert.Equal(t, "1.25", records[1][9])
	assert.Equal(t, "3", records[1][13])

	// 2024-01-03: three -7~-3%
	assert.Equal(t, "3", records[2][7])
	assert.Equal(t, "-4.20", records[2][9])
	assert.Equal(t, "0", records[2][13])
}

func TestWriteDayCSV(t *testing.T) {
	snap := &breadth.DaySnapshot{
		Date:  "2024-01-02",
		Index: "沪深300",
		Counts: []breadth.DayBucketCount{
			{Bucket: ">7%", Color: "#FF0000", Count: 1},
			{Bucket: "-1~0%", Color: "#C3E6C3", Count: 2},
		},
		Up: 1, Down: 2, LimitUp: 1, LimitDown: 0,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDayCSV(&buf, snap))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xef\xbb\xbf"))
	assert.Contains(t, out, ">7%,1")
	assert.Contains(t, out, "limit_up,1")
	assert.Contains(t, out, "limit_down,0")
}

func TestBuildTrendWorkbook(t *testing.T) {
	counts, metrics := sampleTrend()

	f, err := BuildTrendWorkbook(counts, metrics)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Trend", "B1")
	require.NoError(t, err)
	assert.Equal(t, ">7%", v)

	v, err = f.GetCellValue("Trend", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = f.GetCellValue("Metrics", "F2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestBuildDayWorkbook(t *testing.T) {
	snap := &breadth.DaySnapshot{
		Date:   "2024-01-02",
		Counts: []breadth.DayBucketCount{{Bucket: ">7%", Count: 4}},
		Up:     4,
	}

	f, err := BuildDayWorkbook(snap)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Day", "A1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", v)

	v, err = f.GetCellValue("Day", "B3")
	require.NoError(t, err)
	assert.Equal(t, "4", v)
}

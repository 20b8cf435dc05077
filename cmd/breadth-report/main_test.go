package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breadthpulse/internal/breadth"
)

func loadFixture(t *testing.T) *breadth.Table {
	t.Helper()
	csv := "date,pct_chg,group\n" +
		"2024-01-02,8.1,>7%\n" +
		"2024-01-03,-0.5,-1~0%\n" +
		"2024-01-04,1.2,1~3%\n"
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	tbl, err := breadth.Load(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return tbl
}

func TestResolveRangeDefaults(t *testing.T) {
	tbl := loadFixture(t)

	from, to, err := resolveRange(tbl, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", from.Format(breadth.DateFormat))
	assert.Equal(t, "2024-01-04", to.Format(breadth.DateFormat))
}

func TestResolveRangeExplicit(t *testing.T) {
	tbl := loadFixture(t)

	from, to, err := resolveRange(tbl, "2024-01-03", "2024-01-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), to)
}

func TestResolveRangeInverted(t *testing.T) {
	tbl := loadFixture(t)

	_, _, err := resolveRange(tbl, "2024-01-04", "2024-01-02")
	assert.Error(t, err)
}

func TestResolveOutDirFlagWins(t *testing.T) {
	assert.Equal(t, "/tmp/reports", resolveOutDir("/tmp/reports"))
}

func TestResolveOutDirFallsBackToConfig(t *testing.T) {
	t.Setenv("BREADTH_PATHS_EXPORTS_DIR", "/srv/breadth/exports")

	assert.Equal(t, "/srv/breadth/exports", resolveOutDir(""))
}

func TestWriteCSVReport(t *testing.T) {
	tbl := loadFixture(t)
	from, to, err := resolveRange(tbl, "", "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.csv")
	counts := breadth.BucketCounts(tbl, from, to)
	metrics := breadth.DailyMetrics(tbl, from, to)
	require.NoError(t, writeCSVReport(path, counts, metrics))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-02")
	assert.Contains(t, string(data), "cum_net")
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"breadthpulse/internal/breadth"
	"breadthpulse/internal/infrastructure"
)

// BucketMeta describes one return bucket for chart legends
type BucketMeta struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// MetaResponse describes the loaded dataset: its date coverage, the index
// membership columns available for filtering, and the bucket palette.
type MetaResponse struct {
	MinDate        string       `json:"min_date"`
	MaxDate        string       `json:"max_date"`
	TradingDays    int          `json:"trading_days"`
	Dates          []string     `json:"dates"`
	Indexes        []string     `json:"indexes"`
	Buckets        []BucketMeta `json:"buckets"`
	UnknownBuckets int          `json:"unknown_buckets,omitempty"`
}

// TrendResponse carries both trend series for a date range
type TrendResponse struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Counts  []breadth.BucketCount `json:"counts"`
	Metrics []breadth.DailyMetric `json:"metrics"`
}

// BreadthService aggregates the sentiment table into chart-ready series.
// The table is cached in memory and reloaded when the CSV's mtime changes,
// so replacing the file on disk takes effect without a restart.
type BreadthService struct {
	dataFile string
	logger   *slog.Logger
	metrics  *infrastructure.Metrics

	mu      sync.RWMutex
	tbl     *breadth.Table
	modTime time.Time

	loads singleflight.Group
}

// NewBreadthService creates a breadth service reading from dataFile.
// metrics may be nil.
func NewBreadthService(dataFile string, logger *slog.Logger, metrics *infrastructure.Metrics) *BreadthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreadthService{
		dataFile: dataFile,
		logger:   logger,
		metrics:  metrics,
	}
}

// table returns the cached table, reloading if the file changed on disk.
// Concurrent reloads are collapsed into a single parse.
func (s *BreadthService) table(ctx context.Context) (*breadth.Table, error) {
	info, err := os.Stat(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", s.dataFile, breadth.ErrDataFileMissing)
		}
		return nil, fmt.Errorf("stat %s: %w", s.dataFile, err)
	}

	s.mu.RLock()
	if s.tbl != nil && info.ModTime().Equal(s.modTime) {
		tbl := s.tbl
		s.mu.RUnlock()
		return tbl, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.loads.Do("load", func() (interface{}, error) {
		// Re-check under the flight: another caller may have loaded already
		s.mu.RLock()
		if s.tbl != nil && info.ModTime().Equal(s.modTime) {
			tbl := s.tbl
			s.mu.RUnlock()
			return tbl, nil
		}
		s.mu.RUnlock()

		start := time.Now()
		tbl, loadErr := breadth.Load(s.dataFile, s.logger)
		s.metrics.RecordTableLoad(ctx, time.Since(start), loadErr)
		if loadErr != nil {
			return nil, loadErr
		}

		s.logger.InfoContext(ctx, "sentiment table loaded",
			slog.String("file", s.dataFile),
			slog.Int("rows", tbl.Len()),
			slog.Int("trading_days", len(tbl.Dates())),
			slog.Duration("duration", time.Since(start)))

		s.mu.Lock()
		s.tbl = tbl
		s.modTime = info.ModTime()
		s.mu.Unlock()
		return tbl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*breadth.Table), nil
}

// Meta returns dataset coverage and the bucket palette
func (s *BreadthService) Meta(ctx context.Context) (*MetaResponse, error) {
	tbl, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	buckets := make([]BucketMeta, 0, breadth.NumBuckets)
	for _, b := range breadth.Buckets() {
		buckets = append(buckets, BucketMeta{Label: b.String(), Color: b.Color()})
	}

	// Most recent first, the order a date picker presents them in
	dates := tbl.Dates()
	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[len(dates)-1-i] = d.Format(breadth.DateFormat)
	}

	resp := &MetaResponse{
		TradingDays:    len(dates),
		Dates:          formatted,
		Indexes:        tbl.IndexColumns(),
		Buckets:        buckets,
		UnknownBuckets: tbl.UnknownBucketRows(),
	}
	if !tbl.Empty() {
		resp.MinDate = tbl.MinDate().Format(breadth.DateFormat)
		resp.MaxDate = tbl.MaxDate().Format(breadth.DateFormat)
	}
	return resp, nil
}

// Trend computes bucket counts and daily metrics over [from, to].
// The range is clamped to the table's coverage; cum_net restarts at from.
func (s *BreadthService) Trend(ctx context.Context, from, to time.Time) (*TrendResponse, error) {
	tbl, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAggregation(ctx, "trend")

	return &TrendResponse{
		From:    from.Format(breadth.DateFormat),
		To:      to.Format(breadth.DateFormat),
		Counts:  breadth.BucketCounts(tbl, from, to),
		Metrics: breadth.DailyMetrics(tbl, from, to),
	}, nil
}

// Day computes the single-day snapshot, optionally filtered to one index.
// The snapshot always reads the full table, independent of any trend range.
func (s *BreadthService) Day(ctx context.Context, date time.Time, index string) (*breadth.DaySnapshot, error) {
	tbl, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAggregation(ctx, "day")

	snap, err := breadth.Snapshot(tbl, date, index)
	if err != nil {
		return nil, err
	}
	if snap.Warning != "" {
		s.logger.WarnContext(ctx, "index filter unavailable",
			slog.String("index", index),
			slog.String("date", date.Format(breadth.DateFormat)))
	}
	return snap, nil
}

package breadth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for load failures. Both are fatal for the session: the
// caller must halt rendering with a user-facing message rather than proceed
// with partial data.
var (
	ErrDataFileMissing = errors.New("data file not found")
	ErrDataFileCorrupt = errors.New("data file corrupt")
)

// Load reads the market sentiment CSV at path into an immutable Table.
//
// The file must be UTF-8 with a header row containing at least date, pct_chg
// and group columns; every remaining column is treated as a boolean index
// membership flag. A missing file wraps ErrDataFileMissing; a malformed
// header, date or number wraps ErrDataFileCorrupt (fail closed, identical to
// missing). Rows whose group label is outside the fixed bucket domain are
// kept with BucketUnknown and counted, so the caller can log loudly without
// losing the ordering of the valid rows.
func Load(path string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDataFileMissing, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	logger.Info("loaded market sentiment data",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("dates", len(table.dates)),
		slog.Int("index_columns", len(table.indexColumns)),
		slog.Int("unknown_bucket_rows", table.UnknownBucketRows()))

	if table.UnknownBucketRows() > 0 {
		logger.Warn("rows with out-of-domain bucket labels were kept but excluded from charts",
			slog.Int("count", table.UnknownBucketRows()))
	}

	return table, nil
}

func parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0 // every record must match the header width

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrDataFileCorrupt)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	dateCol, pctCol, groupCol := -1, -1, -1
	var indexColumns []string
	var indexPos []int
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "date":
			dateCol = i
		case "pct_chg":
			pctCol = i
		case "group":
			groupCol = i
		default:
			indexColumns = append(indexColumns, strings.TrimSpace(name))
			indexPos = append(indexPos, i)
		}
	}
	if dateCol < 0 || pctCol < 0 || groupCol < 0 {
		return nil, fmt.Errorf("%w: header must contain date, pct_chg and group columns, got %v",
			ErrDataFileCorrupt, header)
	}

	var rows []Row
	unknown := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDataFileCorrupt, line, err)
		}

		date, err := parseDate(record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrDataFileCorrupt, line, err)
		}

		pct, err := strconv.ParseFloat(strings.TrimSpace(record[pctCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad pct_chg %q", ErrDataFileCorrupt, line, record[pctCol])
		}

		bucket, ok := ParseBucket(strings.TrimSpace(record[groupCol]))
		if !ok {
			unknown++
		}

		memberships := make([]bool, len(indexPos))
		for i, pos := range indexPos {
			memberships[i] = parseBool(record[pos])
		}

		rows = append(rows, Row{
			Date:        date,
			PctChg:      pct,
			Bucket:      bucket,
			Memberships: memberships,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	return newTable(rows, indexColumns, unknown), nil
}

// parseDate accepts an ISO date with or without a time component and
// truncates to the pure calendar date in UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) >= len(DateFormat) {
		if d, err := time.ParseInLocation(DateFormat, s[:len(DateFormat)], time.UTC); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

// parseBool accepts the spellings pandas writes for boolean columns.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t", "yes":
		return true
	default:
		return false
	}
}

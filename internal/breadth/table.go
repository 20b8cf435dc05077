package breadth

import (
	"time"
)

// DateFormat is the canonical string form of a calendar date, used for axis
// labels and API parameters alike.
const DateFormat = "2006-01-02"

// Row is one stock on one trading day. Memberships is indexed by the parent
// table's IndexColumns; a true flag means the stock belongs to that index's
// constituent list on that day.
type Row struct {
	Date        time.Time
	PctChg      float64
	Bucket      Bucket
	Memberships []bool
}

// DateString returns the row's date in canonical form.
func (r Row) DateString() string {
	return r.Date.Format(DateFormat)
}

// span marks a half-open row range [start, end) for a single date.
type span struct {
	start, end int
}

// Table is the immutable in-memory form of the loaded CSV. Rows are sorted by
// date ascending and never mutated after load; range and date selections
// return views over the backing slice. A Table is safe for concurrent readers.
type Table struct {
	rows         []Row
	dates        []time.Time // distinct, ascending
	spans        map[string]span
	indexColumns []string
	unknownRows  int
}

// newTable builds the date index over rows already sorted by date ascending.
func newTable(rows []Row, indexColumns []string, unknownRows int) *Table {
	t := &Table{
		rows:         rows,
		spans:        make(map[string]span),
		indexColumns: indexColumns,
		unknownRows:  unknownRows,
	}
	for i := 0; i < len(rows); {
		j := i
		key := rows[i].DateString()
		for j < len(rows) && rows[j].DateString() == key {
			j++
		}
		t.dates = append(t.dates, rows[i].Date)
		t.spans[key] = span{start: i, end: j}
		i = j
	}
	return t
}

// Len returns the total number of loaded rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// MinDate returns the earliest date present, or the zero time for an empty
// table.
func (t *Table) MinDate() time.Time {
	if len(t.dates) == 0 {
		return time.Time{}
	}
	return t.dates[0]
}

// MaxDate returns the latest date present, or the zero time for an empty
// table.
func (t *Table) MaxDate() time.Time {
	if len(t.dates) == 0 {
		return time.Time{}
	}
	return t.dates[len(t.dates)-1]
}

// Dates returns the distinct dates in ascending order. The returned slice is
// a copy and may be reordered by the caller.
func (t *Table) Dates() []time.Time {
	return append([]time.Time(nil), t.dates...)
}

// IndexColumns returns the membership column names in file order.
func (t *Table) IndexColumns() []string {
	return append([]string(nil), t.indexColumns...)
}

// HasIndexColumn reports whether a membership column with the given name was
// present in the loaded file.
func (t *Table) HasIndexColumn(name string) bool {
	return t.indexColumn(name) >= 0
}

func (t *Table) indexColumn(name string) int {
	for i, c := range t.indexColumns {
		if c == name {
			return i
		}
	}
	return -1
}

// UnknownBucketRows returns how many rows carried a group label outside the
// fixed bucket domain.
func (t *Table) UnknownBucketRows() int { return t.unknownRows }

// RowsOn returns a read-only view of the rows for one date, empty if the date
// is absent.
func (t *Table) RowsOn(date time.Time) []Row {
	s, ok := t.spans[date.Format(DateFormat)]
	if !ok {
		return nil
	}
	return t.rows[s.start:s.end]
}

// Range returns a read-only view of the rows with from <= date <= to.
// An inverted or disjoint range yields an empty view.
func (t *Table) Range(from, to time.Time) []Row {
	lo := len(t.rows)
	for i, r := range t.rows {
		if !r.Date.Before(from) {
			lo = i
			break
		}
	}
	hi := lo
	for hi < len(t.rows) && !t.rows[hi].Date.After(to) {
		hi++
	}
	return t.rows[lo:hi]
}

// Package temporal holds an in-memory model of a system-versioned table.
// It behaves like the generated T-SQL so that the merge, backdate and dimension build
// rules can be checked without a database.
package temporal

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MaxValidTo is the period end of a current row.
var MaxValidTo = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Row holds one value per column; nil is NULL.
type Row []interface{}

// Version is one row version with its validity interval [ValidFrom, ValidTo).
type Version struct {
	Row       Row
	ValidFrom time.Time
	ValidTo   time.Time
}

// MergeResult counts the rows touched by a merge.
type MergeResult struct {
	Inserted int
	Updated  int
	Deleted  int
}

// Table is a system-versioned table with a primary key.
type Table struct {
	columns []string
	keys    []int
	current map[string]Version
	order   []string // current keys in insert order
	history []Version
}

func NewTable(columns []string, keys []string) (*Table, error) {
	if len(keys) == 0 {
		return nil, errors.New("temporal table needs a primary key")
	}
	t := &Table{columns: append([]string(nil), columns...), current: map[string]Version{}}
	for _, k := range keys {
		idx, err := t.index(k)
		if err != nil {
			return nil, err
		}
		t.keys = append(t.keys, idx)
	}
	return t, nil
}

func (t *Table) index(column string) (int, error) {
	for i, c := range t.columns {
		if strings.EqualFold(c, column) {
			return i, nil
		}
	}
	return 0, errors.Errorf("unknown column %v", column)
}

// Columns returns the non-period column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) keyOf(r Row) string {
	parts := make(Row, len(t.keys))
	for i, k := range t.keys {
		parts[i] = r[k]
	}
	return tupleKey(parts)
}

// Merge makes the current rows equal to staging at time at.
// Rows whose full tuple already matches a current row are left alone, so a repeated merge
// of the same staging rows opens no new versions.
func (t *Table) Merge(at time.Time, staging []Row) (MergeResult, error) {
	res := MergeResult{}
	at = at.UTC().Truncate(time.Second)
	seen := make(map[string]struct{}, len(staging))
	for _, r := range staging {
		if len(r) != len(t.columns) {
			return res, errors.Errorf("staging row has %v values, want %v", len(r), len(t.columns))
		}
		k := t.keyOf(r)
		if _, dup := seen[k]; dup {
			return res, errors.Errorf("duplicate primary key %v in staging", k)
		}
		seen[k] = struct{}{}
	}
	for _, r := range staging {
		k := t.keyOf(r)
		cur, ok := t.current[k]
		switch {
		case !ok:
			t.current[k] = Version{Row: append(Row(nil), r...), ValidFrom: at, ValidTo: MaxValidTo}
			t.order = append(t.order, k)
			res.Inserted++
		case tupleKey(cur.Row) != tupleKey(r):
			cur.ValidTo = at
			t.history = append(t.history, cur)
			t.current[k] = Version{Row: append(Row(nil), r...), ValidFrom: at, ValidTo: MaxValidTo}
			res.Updated++
		}
	}
	kept := t.order[:0]
	for _, k := range t.order {
		if _, ok := seen[k]; ok {
			kept = append(kept, k)
			continue
		}
		cur := t.current[k]
		cur.ValidTo = at
		t.history = append(t.history, cur)
		delete(t.current, k)
		res.Deleted++
	}
	t.order = kept
	return res, nil
}

// MinValidFrom returns the earliest period start across current and history rows.
func (t *Table) MinValidFrom() (time.Time, bool) {
	var min time.Time
	found := false
	for _, v := range t.All() {
		if !found || v.ValidFrom.Before(min) {
			min = v.ValidFrom
			found = true
		}
	}
	return min, found
}

// Backdate sets the period start of every current row to anchor unless the earliest
// period start already equals it. It reports whether any row changed.
func (t *Table) Backdate(anchor time.Time) bool {
	anchor = anchor.UTC().Truncate(time.Second)
	min, ok := t.MinValidFrom()
	if !ok || min.Equal(anchor) {
		return false
	}
	for k, v := range t.current {
		v.ValidFrom = anchor
		t.current[k] = v
	}
	return true
}

// Current returns the current rows in insert order.
func (t *Table) Current() []Version {
	retval := make([]Version, 0, len(t.order))
	for _, k := range t.order {
		retval = append(retval, t.current[k])
	}
	return retval
}

// AsOf returns the versions valid at ts, like FOR SYSTEM_TIME AS OF.
func (t *Table) AsOf(ts time.Time) []Version {
	var retval []Version
	for _, v := range t.All() {
		if !v.ValidFrom.After(ts) && v.ValidTo.After(ts) {
			retval = append(retval, v)
		}
	}
	return retval
}

// All returns history then current versions, like FOR SYSTEM_TIME ALL.
func (t *Table) All() []Version {
	retval := append([]Version(nil), t.history...)
	return append(retval, t.Current()...)
}

// Project returns the values of columns from r.
func (t *Table) Project(r Row, columns []string) (Row, error) {
	retval := make(Row, len(columns))
	for i, c := range columns {
		idx, err := t.index(c)
		if err != nil {
			return nil, err
		}
		retval[i] = r[idx]
	}
	return retval, nil
}

// tupleKey renders r so that equal tuples, NULLs included, give equal keys.
func tupleKey(r Row) string {
	parts := make([]string, len(r))
	for i, v := range r {
		if v == nil {
			parts[i] = "\x01"
			continue
		}
		if ts, ok := v.(time.Time); ok {
			v = ts.UTC().Format(time.RFC3339Nano)
		}
		parts[i] = fmt.Sprintf("%T:%v", v, v)
	}
	return strings.Join(parts, "\x00")
}

// compareValues orders NULL first, then numbers, strings and times naturally.
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

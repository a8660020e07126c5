package temporal

import (
	"sort"
	"time"
)

// DimensionRow is one row of a rebuilt dimension.
// ValidFrom and ValidTo are zero for a Type 1 build.
type DimensionRow struct {
	ID        int
	Row       Row
	ValidFrom time.Time
	ValidTo   time.Time
}

// SnapshotAsOf rebuilds a Type 1 dimension from the versions of t valid at now.
// Surrogate keys restart at 1 on every build.
func SnapshotAsOf(t *Table, columns []string, now time.Time) ([]DimensionRow, error) {
	versions := t.AsOf(now.UTC().Truncate(time.Second))
	retval := make([]DimensionRow, 0, len(versions))
	for i, v := range versions {
		r, err := t.Project(v.Row, columns)
		if err != nil {
			return nil, err
		}
		retval = append(retval, DimensionRow{ID: i + 1, Row: r})
	}
	return retval, nil
}

// CollapseEpisodes rebuilds a Type 2 dimension from every version of t.
// Versions with the same tuple over columns collapse into one episode spanning
// MIN(ValidFrom) to MAX(ValidTo). Episodes are numbered from 1 ordered by ValidTo,
// then ValidFrom, then the tuple values in column order.
func CollapseEpisodes(t *Table, columns []string) ([]DimensionRow, error) {
	groups := map[string]*DimensionRow{}
	var keys []string
	for _, v := range t.All() {
		r, err := t.Project(v.Row, columns)
		if err != nil {
			return nil, err
		}
		k := tupleKey(r)
		g, ok := groups[k]
		if !ok {
			groups[k] = &DimensionRow{Row: r, ValidFrom: v.ValidFrom, ValidTo: v.ValidTo}
			keys = append(keys, k)
			continue
		}
		if v.ValidFrom.Before(g.ValidFrom) {
			g.ValidFrom = v.ValidFrom
		}
		if v.ValidTo.After(g.ValidTo) {
			g.ValidTo = v.ValidTo
		}
	}
	retval := make([]DimensionRow, 0, len(keys))
	for _, k := range keys {
		retval = append(retval, *groups[k])
	}
	sort.SliceStable(retval, func(i, j int) bool {
		return episodeLess(retval[i], retval[j])
	})
	for i := range retval {
		retval[i].ID = i + 1
	}
	return retval, nil
}

func episodeLess(a, b DimensionRow) bool {
	if !a.ValidTo.Equal(b.ValidTo) {
		return a.ValidTo.Before(b.ValidTo)
	}
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return a.ValidFrom.Before(b.ValidFrom)
	}
	for i := range a.Row {
		if c := compareValues(a.Row[i], b.Row[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

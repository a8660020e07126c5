package helper

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"

	om "github.com/cevaris/ordered_map"
)

var reTrue = regexp.MustCompile("(?i)^(true|yes|y|1)$")

// StringSliceToOrderedMap adds each value in s to an ordered map with key and value set to the value in s.
// Duplicates keep their first position.
func StringSliceToOrderedMap(s []string) *om.OrderedMap {
	retval := om.NewOrderedMap()
	for _, v := range s {
		if _, ok := retval.Get(v); !ok {
			retval.Set(v, v)
		}
	}
	return retval
}

// OrderedMapKeys returns the string keys of m in insertion order.
func OrderedMapKeys(m *om.OrderedMap) []string {
	retval := make([]string, 0, m.Len())
	iter := m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Key.(string))
	}
	return retval
}

// DistinctStrings drops repeated values from s keeping first positions.
// A nil slice stays nil.
func DistinctStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return OrderedMapKeys(StringSliceToOrderedMap(s))
}

// CsvToStringSliceTrimSpaces converts a string of the form, 'f1, f2, "f 3", ...' into a slice of string values.
// Empty values are dropped.
func CsvToStringSliceTrimSpaces(s string) (retval []string, err error) {
	c := csv.NewReader(strings.NewReader(s))
	c.TrimLeadingSpace = true
	c.FieldsPerRecord = -1
	all, err := c.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse list %q: %w", s, err)
	}
	for _, rec := range all { // for each line in the CSV...
		for _, val := range rec {
			if v := strings.TrimSpace(val); v != "" {
				retval = append(retval, v)
			}
		}
	}
	return retval, nil
}

// GetTrueFalseStringAsBool returns true for true/yes/y/1 in any case.
func GetTrueFalseStringAsBool(s string) bool {
	return reTrue.MatchString(strings.TrimSpace(s))
}

// SplitRight splits s on the last occurrence of c.
func SplitRight(s string, c string) (string, string) {
	i := strings.LastIndex(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// Maybe s is of the form t c u.
// If so, return  t, u.
// If not, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// RemoveSpaces strips all whitespace from s, used to build object names from table names.
func RemoveSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// QuoteIdent wraps s in T-SQL brackets.
func QuoteIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// QuoteIdents applies QuoteIdent to every element of s.
func QuoteIdents(s []string) []string {
	retval := make([]string, len(s))
	for i, v := range s {
		retval[i] = QuoteIdent(v)
	}
	return retval
}

// QuoteLiteral returns s as a T-SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QualifiedName returns the bracket-quoted, dot-separated name of the non-empty parts.
func QualifiedName(parts ...string) string {
	q := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			q = append(q, QuoteIdent(p))
		}
	}
	return strings.Join(q, ".")
}

// GenerateSliceOfColsEqualCols returns "tgt.[col] = src.[col]" for each column in colList.
func GenerateSliceOfColsEqualCols(colList []string, srcAlias string, tgtAlias string) []string {
	retval := make([]string, len(colList))
	for idx, col := range colList {
		c := QuoteIdent(col)
		retval[idx] = fmt.Sprintf("%s.%s = %s.%s", tgtAlias, c, srcAlias, c)
	}
	return retval
}

// ContainsFold reports whether s is in list, ignoring case.
func ContainsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

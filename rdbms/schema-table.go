package rdbms

import (
	"regexp"
	"strings"

	"github.com/relloyd/makedw/helper"
)

var reQuotedPart = regexp.MustCompile(`^\s*(\[(?:[^\]]|\]\])+\]|"(?:[^"]|"")+"|[^.\s]+)\s*(?:\.|$)`)

// SchemaTable is a user-supplied [<schema>.]<table> reference.
// Either part may be quoted with T-SQL brackets or double quotes.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

// NewSchemaTable builds a reference from unquoted names, bracketing any part that needs it.
func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{quoteIfNeeded(table)}
	}
	return SchemaTable{quoteIfNeeded(schema) + "." + quoteIfNeeded(table)}
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ". \t\"[]") {
		return helper.QuoteIdent(s)
	}
	return s
}

// parts splits the reference into unquoted identifiers.
// Anything that cannot be parsed is treated as a single table name.
func (st *SchemaTable) parts() []string {
	var retval []string
	s := st.SchemaTable
	for len(strings.TrimSpace(s)) > 0 {
		m := reQuotedPart.FindStringSubmatchIndex(s)
		if m == nil {
			return []string{st.SchemaTable}
		}
		retval = append(retval, unquote(s[m[2]:m[3]]))
		s = s[m[1]:]
	}
	return retval
}

func unquote(s string) string {
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return strings.ReplaceAll(s[1:len(s)-1], "]]", "]")
	case strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`):
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// GetTable returns the unquoted table name.
func (st *SchemaTable) GetTable() string {
	p := st.parts()
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// GetSchema returns the unquoted schema name, or "" when none was given.
func (st *SchemaTable) GetSchema() string {
	p := st.parts()
	if len(p) < 2 {
		return ""
	}
	return p[len(p)-2]
}

// Quoted returns the bracket-quoted [schema].[table].
func (st *SchemaTable) Quoted() string {
	return helper.QualifiedName(st.GetSchema(), st.GetTable())
}

// AppendSuffix returns the reference with suffix added to the table name.
func (st *SchemaTable) AppendSuffix(suffix string) SchemaTable {
	return NewSchemaTable(st.GetSchema(), st.GetTable()+suffix)
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}

package actions

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/pkg/errors"
)

// TableFilter applies a JSON Logic rule to decide which source tables are generated.
// The rule sees {"table": <name>, "schema": <source schema>}.
type TableFilter struct {
	rule string
}

// NewTableFilter returns nil for an empty rule, which matches every table.
func NewTableFilter(rule string) (*TableFilter, error) {
	if strings.TrimSpace(rule) == "" {
		return nil, nil
	}
	if !jsonlogic.IsValid(strings.NewReader(rule)) {
		return nil, errors.Errorf("invalid table filter rule: %v", rule)
	}
	return &TableFilter{rule: rule}, nil
}

// Match reports whether the rule returns true for the table.
func (f *TableFilter) Match(schemaName, table string) (bool, error) {
	if f == nil {
		return true, nil
	}
	data, err := json.Marshal(map[string]string{"table": table, "schema": schemaName})
	if err != nil {
		return false, err
	}
	var result bytes.Buffer
	if err := jsonlogic.Apply(strings.NewReader(f.rule), bytes.NewReader(data), &result); err != nil {
		return false, errors.Wrap(err, "error applying table filter")
	}
	return strings.TrimSpace(result.String()) == "true", nil
}

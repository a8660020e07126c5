package derive

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/config"
)

// ConfigurationError is fatal for the whole run.
type ConfigurationError = config.ConfigurationError

var (
	ErrConfiguration = config.ErrConfiguration
	// ErrMissingKey matches every MissingKeyError via errors.Is.
	ErrMissingKey = errors.New("missing primary key")
)

// MissingKeyError reports a table for which no primary key could be derived.
// It only fails that table.
type MissingKeyError struct {
	Table  string
	Stage  string
	Reason string
}

func (e *MissingKeyError) Error() string {
	msg := fmt.Sprintf("no primary key for %v table %q", e.Stage, e.Table)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

func configErr(table string, format string, args ...interface{}) error {
	return &ConfigurationError{Table: table, Rule: fmt.Sprintf(format, args...)}
}

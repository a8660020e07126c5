package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports settings or column selections that cannot produce a warehouse.
// It is fatal for the whole run.
type ConfigurationError struct {
	Table string // empty for run-wide settings
	Rule  string
}

func (e *ConfigurationError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("configuration error: %v", e.Rule)
	}
	return fmt.Sprintf("configuration error for table %q: %v", e.Table, e.Rule)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

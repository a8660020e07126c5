package actions

import (
	"github.com/relloyd/makedw/rdbms/shared"
)

// ConnectionLoader resolves a saved connection name for the generate command.
// config.File and the twelve factor environment loader both satisfy it.
type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

// KeyValueStore is a flat store of named values, typically a config file.
type KeyValueStore interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

// DefaultsStore holds saved flag defaults that the generate and serve commands pick up.
type DefaultsStore interface {
	KeyValueStore
	GetAllKeys() ([]string, error)
}

// ConnectionValidator is implemented by each kind of connection details
// (source databases and S3 output buckets) so they can be checked before saving.
type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}

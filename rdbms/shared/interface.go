package shared

// Details is implemented by each connection type so a DSN can be validated before it is saved.
type Details interface {
	Parse() error
	GetScheme() (string, error)
	GetMap(m map[string]string) map[string]string
	String() string
}

type SqlResultHandler interface {
	HandleHeader(i []interface{}) error
	HandleRow(i []interface{}) error
}

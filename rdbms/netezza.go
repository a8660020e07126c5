package rdbms

import (
	"database/sql"

	"github.com/relloyd/makedw/rdbms/shared"
)

// newNetezzaConnection opens the Netezza database connection specified in d.
func newNetezzaConnection(d *shared.DsnConnectionDetails) (*sql.DB, error) {
	n := shared.NetezzaConnectionDetails{Dsn: d.Dsn}
	dsn, err := n.GetNzgoConnectionString()
	if err != nil {
		return nil, err
	}
	return sql.Open("nzgo", dsn)
}

package rdbms

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/IBM/nzgo/v12"
	_ "github.com/denisenkom/go-mssqldb"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/rdbms/shared"
	"github.com/xo/dburl"
)

// SupportedConnectionTypes lists the source database types that can be introspected.
var SupportedConnectionTypes = []string{
	constants.ConnectionTypeSqlServer,
	constants.ConnectionTypeSnowflake,
	constants.ConnectionTypeNetezza,
}

// IsSupportedConnection returns true if connectionType is in SupportedConnectionTypes.
func IsSupportedConnection(connectionType string) bool {
	for _, v := range SupportedConnectionTypes {
		if v == connectionType {
			return true
		}
	}
	return false
}

// OpenDbConnection opens and pings a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(ctx context.Context, log logger.Logger, c shared.ConnectionDetails) (db *sql.DB, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	d := shared.GetDsnConnectionDetails(&c)
	switch c.Type {
	case constants.ConnectionTypeSnowflake:
		db, err = newSnowflakeConnection(d)
	case constants.ConnectionTypeSqlServer:
		db, err = newConnectionWithDsn(d)
	case constants.ConnectionTypeNetezza:
		db, err = newNetezzaConnection(d)
	default:
		err = fmt.Errorf("unsupported database type, %q", c.Type)
	}
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to %v: %w", c.LogicalName, err)
	}
	log.Info("Successful connection to: ", c.LogicalName)
	return db, nil
}

func newConnectionWithDsn(d *shared.DsnConnectionDetails) (*sql.DB, error) {
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return nil, fmt.Errorf("error parsing DSN %q: %w", d, err)
	}
	return sql.Open(u.Driver, u.DSN)
}

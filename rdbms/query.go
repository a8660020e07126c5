package rdbms

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/rdbms/shared"
)

// Querier is the part of *sql.DB used to read metadata.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SqlQuery runs sqltext and streams the header and each row to i.
func SqlQuery(ctx context.Context, log logger.Logger, db Querier, sqltext string, args []interface{}, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext, args...)
	if err != nil {
		return fmt.Errorf("error during database query using SQL: '%v': %w", sqltext, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("error fetching columns: %w", err)
	}
	log.Trace("query columns: ", cols)
	scanPtrs := make([]interface{}, len(cols))
	scanVals := make([]interface{}, len(cols))
	for idx := range cols {
		scanPtrs[idx] = &scanVals[idx]
	}
	header := make([]interface{}, len(cols))
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	for rows.Next() {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]interface{}, len(cols))
		copy(row, scanVals)
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

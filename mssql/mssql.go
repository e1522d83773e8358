// Package mssql adapts composed tvp invocations to the
// github.com/microsoft/go-mssqldb driver. The core binds table-valued
// arguments as *tvp.Rows; this wrapper rewraps them as mssql.TVP values,
// which the driver knows how to send over TDS.
package mssql

import (
	"context"
	"database/sql"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/go-tvp/tvp"
)

// DB wraps an Execer opened with the sqlserver driver.
type DB struct {
	inner tvp.Execer
}

// Wrap adapts db (typically a *sql.DB on the sqlserver driver) for use as
// the executor of tvp invocations.
func Wrap(db tvp.Execer) *DB {
	return &DB{inner: db}
}

// ExecContext implements tvp.Execer, rewrapping tabular parameters before
// delegating to the underlying connection.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.inner.ExecContext(ctx, query, rewrap(args)...)
}

// rewrap converts every *tvp.Rows bound parameter into the driver's TVP
// representation. Scalar parameters pass through untouched.
func rewrap(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if na, ok := a.(sql.NamedArg); ok {
			if rows, ok := na.Value.(*tvp.Rows); ok {
				na.Value = mssqldb.TVP{TypeName: rows.TypeName, Value: rows.Records}
				out[i] = na
				continue
			}
		}
		out[i] = a
	}
	return out
}

// Package repository implements domain.Store on Oracle through sqlx.
// Queries use positional binds (:1, :2, ...) so they work with both go-ora and godror.
package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// isUniqueViolation matches ORA-00001 from either driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}

// binds returns ":start, :start+1, ..." for n positional parameters.
func binds(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = ":" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

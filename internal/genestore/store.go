// Package genestore provides the bun-backed base repositories for the
// genomic browse domain. Two variants exist per record type: a plain store
// with straightforward queries, and an optimized store that prunes columns
// and pushes aggregation into SQL. Which variant serves traffic is decided at
// wiring time by the configured optimization level.
package genestore

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Open connects to the configured database. sqlite3 serves development and
// tests, postgres serves production.
func Open(driver, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case "sqlite3":
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb.Close()
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

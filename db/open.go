// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Supported DATABASE_TYPE values
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the configured database. The caller must import the
// matching driver (modernc.org/sqlite or github.com/lib/pq).
//
// SQLite connections get foreign keys and a busy timeout, and the pool is
// limited to a single connection so writers never see SQLITE_BUSY.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case TypeSQLite, "":
		conn, err := sql.Open("sqlite", SQLiteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1)
		return conn, nil
	case TypePostgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unsupported database type %q (want %s or %s)", dbType, TypeSQLite, TypePostgres)
}

// SQLiteDSN adds the pragmas the schema relies on to a SQLite path or URI.
func SQLiteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

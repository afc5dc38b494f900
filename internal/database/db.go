// Package database opens the MySQL connection pool backing the repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// pingTimeout bounds the startup connectivity check so a wrong DB_HOST
// fails fast instead of hanging the boot.
const pingTimeout = 5 * time.Second

// Open opens a MySQL pool for the given DSN and verifies connectivity with
// a bounded ping. maxConns sizes both the open and idle sides of the pool
// (the reconciler sweep and the HTTP handlers share it); connLifetime
// retires connections so load-balancer and server-side idle cuts are never
// observed mid-query.
func Open(ctx context.Context, dsn string, maxConns int, connLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(connLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

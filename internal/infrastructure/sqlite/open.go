// Package sqlite implementa el sustrato indexado embebido sobre SQLite (driver puro Go),
// con la misma disposición de tablas que PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Driver SQLite sin CGO
	_ "modernc.org/sqlite"
)

// Open abre (o crea) la base en path con WAL y busy timeout, y asegura el esquema.
func Open(ctx context.Context, path string) (*Substrate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Una sola conexión: SQLite serializa escrituras y así RunAtomic no compite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	sub := &Substrate{q: db, db: db}
	if err := sub.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sub, nil
}

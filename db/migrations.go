package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsGlobPattern = "migrations/*.sql"
	// Arbitrary, stable advisory lock key to avoid concurrent migrators.
	migrationsAdvisoryLockID int64 = 7315561904276350541
)

type migration struct {
	version  string
	checksum string
	sql      string
}

// loadMigrations reads the migrations matching the glob from fsys in
// filename order.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	paths, err := fs.Glob(fsys, migrationsGlobPattern)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(paths)

	out := make([]migration, 0, len(paths))
	for _, p := range paths {
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", p, err)
		}
		sum := sha256.Sum256(body)
		out = append(out, migration{
			version:  path.Base(p),
			checksum: hex.EncodeToString(sum[:]),
			sql:      string(body),
		})
	}
	return out, nil
}

// Migrate applies the embedded schema migrations in filename order and
// records them in schema_migrations. Applied migrations whose checksum
// changed are rejected.
func (p *PostgresDBImpl) Migrate(ctx context.Context) error {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	// The advisory lock is session scoped, so hold one connection throughout.
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return storageErr("migrate", err)
	}
	defer conn.Close()

	return storageErr("migrate", runMigrations(ctx, conn, migrations))
}

func runMigrations(ctx context.Context, conn *sql.Conn, migrations []migration) error {
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationsAdvisoryLockID); err != nil {
		return fmt.Errorf("acquire migrations advisory lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationsAdvisoryLockID)
	}()

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied string
		err := conn.QueryRowContext(ctx, `SELECT checksum FROM schema_migrations WHERE version = $1`, m.version).Scan(&applied)
		switch {
		case err == nil:
			if !strings.EqualFold(applied, m.checksum) {
				return fmt.Errorf("migration %s checksum mismatch (db=%s file=%s)", m.version, applied, m.checksum)
			}
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check schema_migrations for %s: %w", m.version, err)
		}

		if err := applyMigration(ctx, conn, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, conn *sql.Conn, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx for %s: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("execute migration %s: %w", m.version, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, checksum, applied_at) VALUES ($1, $2, NOW())`,
		m.version, m.checksum,
	); err != nil {
		return fmt.Errorf("record schema_migrations row for %s: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.version, err)
	}
	return nil
}

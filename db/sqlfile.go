package db

import (
	"context"
	"fmt"
	"os"

	"github.com/wvflights/flightlog-api/pkg/logger"
)

// LoadSQLFile executes a SQL dump, such as a published data release, in a
// single transaction. The file is expected to target the migrated schema.
func (p *PostgresDBImpl) LoadSQLFile(ctx context.Context, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sql file: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("load sql file", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return storageErr("load sql file", fmt.Errorf("%s: %w", path, err))
	}
	if err := tx.Commit(); err != nil {
		return storageErr("load sql file", err)
	}

	logger.WithContext(ctx).Info("loaded sql file", "path", path, "bytes", len(body))
	return nil
}

// Package db persists the dispatch engine's owned entities in SQLite via
// GORM and appends the immutable audit trail alongside every mutation.
package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unioncore/dispatch/pkg/core/model"
)

type actorKey struct{}

// WithActor tags the context with the acting user for audit records.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "system"
}

// DB is the concrete store. SQLite's single-writer model gives the
// serializable transaction boundary the ranking state requires.
type DB struct {
	g   *gorm.DB
	log *zap.Logger
}

// Open opens (or creates) the database at path. Use "file::memory:" for
// tests.
func Open(path string, log *zap.Logger) (*DB, error) {
	g, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}

	log.Debug("Database opened", zap.String("path", path))
	return &DB{g: g, log: log}, nil
}

// Migrate creates or updates the schema for every owned table.
func (d *DB) Migrate() error {
	if err := d.g.AutoMigrate(
		&model.Book{},
		&model.Registration{},
		&model.CheckMark{},
		&model.Exemption{},
		&model.LaborRequest{},
		&model.Dispatch{},
		&model.Bid{},
		&model.BiddingInfraction{},
		&model.MemberBlackout{},
		&model.AuditRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.g.DB()
	if err != nil {
		return fmt.Errorf("failed to resolve sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// InTx runs fn inside one transaction. All store calls made through the
// EngineStore handed to fn share that transaction, which is what keeps
// candidate selection and the subsequent dispatch write atomic.
func (d *DB) InTx(ctx context.Context, fn func(EngineStore) error) error {
	return d.g.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{g: tx, log: d.log})
	})
}

func (d *DB) conn(ctx context.Context) *gorm.DB {
	return d.g.WithContext(ctx)
}

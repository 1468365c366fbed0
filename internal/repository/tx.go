package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTxManager runs functions inside one GORM transaction, carried through
// the context so every repository joins the same transaction.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a transaction manager for the given database.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// RunSerializable executes fn inside a serializable transaction. On sqlite
// the isolation option is omitted; sqlite transactions are serializable
// already and the driver rejects explicit levels.
func (m *GormTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	run := func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}
	if m.db.Dialector.Name() == "sqlite" {
		return m.db.WithContext(ctx).Transaction(run)
	}
	return m.db.WithContext(ctx).Transaction(run, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// dbFrom returns the ambient transaction from ctx, or base when the call is
// not running inside one.
func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

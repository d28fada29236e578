// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/household-ledger/backend/internal/application/adapter"
)

type txKey struct{}

// gormTransactor implements the adapter.Transactor interface.
type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a new transactor backed by db.
func NewTransactor(db *gorm.DB) adapter.Transactor {
	return &gormTransactor{
		db: db,
	}
}

// WithinTransaction runs fn inside a transaction. When ctx already carries a
// transaction, fn joins it instead of opening a new one.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

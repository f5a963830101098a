package db

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/platform/dbctx"
)

// TxRunner provides the transaction boundaries used by the services.
type TxRunner interface {
	// InTx runs fn in a read-write transaction.
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
	// InSnapshot runs fn in a read-only transaction with a stable view of the
	// data (REPEATABLE READ on Postgres).
	InSnapshot(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

var errNilDB = errors.New("transaction runner has nil db")

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errNilDB
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

func (r *gormTxRunner) InSnapshot(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errNilDB
	}
	var opts []*sql.TxOptions
	if r.db.Dialector != nil && r.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}, opts...)
}

package testutil

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/taskflow/internal/db"
)

// FlakyUoW wraps a real unit of work and fails the FailAt-th ExecContext
// (counting from 1) inside each transaction with Err. Reads are untouched.
type FlakyUoW struct {
	Inner  db.UnitOfWork
	FailAt int
	Err    error
}

func (u *FlakyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &flakyTx{DBTX: tx, failAt: u.FailAt, err: u.Err})
	})
}

type flakyTx struct {
	db.DBTX
	execs  int
	failAt int
	err    error
}

func (f *flakyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.execs++
	if f.execs == f.failAt {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// BrokenUoW fails every transaction before fn runs.
type BrokenUoW struct {
	Err error
}

func (u BrokenUoW) WithinTx(context.Context, func(ctx context.Context, tx db.DBTX) error) error {
	return u.Err
}

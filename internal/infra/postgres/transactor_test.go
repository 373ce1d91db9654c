package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeTx implements only what WithinTx calls; anything else panics.
type fakeTx struct {
	pgx.Tx
	committed bool
	rollbacks int
	commitErr error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rollbacks++
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (f *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithinTxCommits(t *testing.T) {
	tx := &fakeTx{}
	tr := NewTransactor(&fakeBeginner{tx: tx})

	var got pgx.Tx
	err := tr.WithinTx(context.Background(), func(_ context.Context, inner pgx.Tx) error {
		got = inner
		return nil
	})
	if err != nil {
		t.Fatalf("within tx: %v", err)
	}
	if got != pgx.Tx(tx) || !tx.committed {
		t.Fatalf("unexpected tx use: same=%v committed=%v", got == pgx.Tx(tx), tx.committed)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	tr := NewTransactor(&fakeBeginner{tx: tx})
	boom := errors.New("boom")

	err := tr.WithinTx(context.Background(), func(context.Context, pgx.Tx) error { return boom })
	if err != boom {
		t.Fatalf("unexpected error: got=%v want=%v", err, boom)
	}
	if tx.committed || tx.rollbacks != 1 {
		t.Fatalf("unexpected tx state: committed=%v rollbacks=%d", tx.committed, tx.rollbacks)
	}
}

func TestWithinTxWrapsBeginAndCommitErrors(t *testing.T) {
	refused := errors.New("connection refused")
	err := NewTransactor(&fakeBeginner{err: refused}).WithinTx(context.Background(), func(context.Context, pgx.Tx) error {
		t.Fatalf("fn must not run without a transaction")
		return nil
	})
	if !errors.Is(err, refused) {
		t.Fatalf("unexpected begin error: got=%v want=%v", err, refused)
	}

	serialization := errors.New("could not serialize access")
	tx := &fakeTx{commitErr: serialization}
	err = NewTransactor(&fakeBeginner{tx: tx}).WithinTx(context.Background(), func(context.Context, pgx.Tx) error { return nil })
	if !errors.Is(err, serialization) || tx.rollbacks != 1 {
		t.Fatalf("unexpected commit result: err=%v rollbacks=%d", err, tx.rollbacks)
	}
}

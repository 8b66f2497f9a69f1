package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type execCall struct {
	sql  string
	args []any
}

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

type fakeDB struct {
	execs     []execCall
	execErr   error
	rows      [][]any
	queryErr  error
	lastQuery execCall
	tx        *fakeTx
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	db.lastQuery = execCall{sql: sql, args: args}
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return &fakeRows{data: db.rows, pos: -1}, nil
}

func (db *fakeDB) QueryRow(context.Context, string, ...any) Row {
	return &fakeRows{pos: -1}
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	db.execs = append(db.execs, execCall{sql: sql, args: args})
	if db.execErr != nil {
		return nil, db.execErr
	}
	return fakeTag(1), nil
}

func (db *fakeDB) Begin(context.Context) (Tx, error) {
	db.tx = &fakeTx{db: db}
	return db.tx, nil
}

func (db *fakeDB) Close() {}

type fakeTx struct {
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return tx.db.Query(ctx, sql, args...)
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

// fakeRows scans canned values into the supported destination types
type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

func (r *fakeRows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.data) {
		return errors.New("no rows in result set")
	}
	row := r.data[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = v.(uuid.UUID)
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *int:
			*d = v.(int)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("unsupported destination %T", dest[i])
		}
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

const getEntry = `SELECT key, value, updated_at FROM kv WHERE key = ?`

func (q *Queries) GetEntry(ctx context.Context, key string) (Entry, error) {
	var (
		e       Entry
		updated string
	)
	err := q.db.QueryRowContext(ctx, getEntry, key).Scan(&e.Key, &e.Value, &updated)
	if err != nil {
		return Entry{}, err
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return e, nil
}

const upsertEntry = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

type UpsertEntryParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) error {
	_, err := q.db.ExecContext(ctx, upsertEntry, arg.Key, arg.Value, arg.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

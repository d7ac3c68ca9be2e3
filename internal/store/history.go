package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const historyTable = "history"

var historyColumns = []string{"id", "topic", "nodes", "last_accessed", "sequence"}

// historyRepo implements HistoryRepo. Recency is the global sequence, so
// re-putting a record moves it to the front.
type historyRepo struct {
	store *Store
}

func (r *historyRepo) Put(ctx context.Context, rec HistoryRecord) error {
	seqNum, err := r.store.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if rec.LastAccessed.IsZero() {
		rec.LastAccessed = time.Now()
	}

	query, args := r.store.builder().Insert(historyTable).
		Columns(historyColumns...).
		Values(rec.ID, rec.Topic, string(rec.Nodes), rec.LastAccessed.UnixMilli(), seqNum).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save history %s: %w", rec.ID, err)
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context) ([]HistoryRecord, error) {
	b := r.store.builder()
	query, args := b.Select(historyColumns...).
		From(b.Table(historyTable)).
		OrderBy(entsql.Desc("sequence")).
		Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}

func (r *historyRepo) Get(ctx context.Context, id string) (*HistoryRecord, error) {
	b := r.store.builder()
	query, args := b.Select(historyColumns...).
		From(b.Table(historyTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanHistory(r.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history %s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (r *historyRepo) Delete(ctx context.Context, id string) error {
	query, args := r.store.builder().Delete(historyTable).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete history %s: %w", id, err)
	}
	return nil
}

func (r *historyRepo) Prune(ctx context.Context, keep int) error {
	// Find the sequence of the first record past the cut.
	b := r.store.builder()
	query, args := b.Select("sequence").
		From(b.Table(historyTable)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Offset(keep).
		Query()

	var threshold int64
	err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep records exist
	}
	if err != nil {
		return fmt.Errorf("query history for prune: %w", err)
	}

	query, args = r.store.builder().Delete(historyTable).
		Where(entsql.LTE("sequence", threshold)).
		Query()
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

func scanHistory(row rowScanner) (*HistoryRecord, error) {
	var (
		rec      HistoryRecord
		nodes    string
		accessed int64
	)
	if err := row.Scan(&rec.ID, &rec.Topic, &nodes, &accessed, &rec.Sequence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history: %w", err)
	}
	rec.Nodes = []byte(nodes)
	rec.LastAccessed = time.UnixMilli(accessed)
	return &rec, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const settingsTable = "settings"

type settingsRepo struct {
	store *Store
}

func (r *settingsRepo) Get(ctx context.Context, key string) ([]byte, error) {
	b := r.store.builder()
	query, args := b.Select("value").
		From(b.Table(settingsTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query setting %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *settingsRepo) Put(ctx context.Context, key string, value []byte) error {
	query, args := r.store.builder().Insert(settingsTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// stateRepo implements StateRepo over the player_states table.
type stateRepo struct {
	db *sql.DB
}

func (r *stateRepo) Load(ctx context.Context, key string) ([]byte, error) {
	query, args := builder().
		Select("data").
		From(entsql.Table(tablePlayerStates)).
		Where(entsql.EQ("key", key)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state %q: %w", key, err)
	}
	return []byte(data), nil
}

func (r *stateRepo) Save(ctx context.Context, key string, data []byte) error {
	query, args := builder().
		Insert(tablePlayerStates).
		Columns("key", "data", "updated_at").
		Values(key, string(data), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// appendEvent inserts one row into an event table, prefixed with the next
// global sequence and the current timestamp.
func (r *eventRepo) appendEvent(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}

	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, now().UTC()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// selectEvents builds a newest-first query over an event table.
func selectEvents(table string, opts QueryOpts, columns ...string) (string, []any) {
	sel := builder().
		Select(append([]string{"id", "sequence", "timestamp"}, columns...)...).
		From(entsql.Table(table)).
		OrderBy(entsql.Desc("sequence"))

	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel.Query()
}

func (r *eventRepo) AppendWorksheetEvent(ctx context.Context, data WorksheetEventData) error {
	return r.appendEvent(ctx, tableWorksheetEvents,
		[]string{"topic", "grade", "score", "total", "xp_gained", "level_after", "decision", "fallback"},
		[]any{data.Topic, data.Grade, data.Score, data.Total, data.XPGained, data.LevelAfter, data.Decision, data.Fallback},
	)
}

func (r *eventRepo) QueryWorksheetEvents(ctx context.Context, opts QueryOpts) ([]WorksheetEventRecord, error) {
	query, args := selectEvents(tableWorksheetEvents, opts,
		"topic", "grade", "score", "total", "xp_gained", "level_after", "decision", "fallback")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query worksheet events: %w", err)
	}
	defer rows.Close()

	var records []WorksheetEventRecord
	for rows.Next() {
		var e WorksheetEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp,
			&e.Topic, &e.Grade, &e.Score, &e.Total, &e.XPGained, &e.LevelAfter, &e.Decision, &e.Fallback); err != nil {
			return nil, fmt.Errorf("scan worksheet event: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

func (r *eventRepo) AppendArtifactEvent(ctx context.Context, data ArtifactEventData) error {
	return r.appendEvent(ctx, tableArtifactEvents,
		[]string{"artifact_id", "name", "rarity", "topic"},
		[]any{data.ArtifactID, data.Name, data.Rarity, data.Topic},
	)
}

func (r *eventRepo) QueryArtifactEvents(ctx context.Context, opts QueryOpts) ([]ArtifactEventRecord, error) {
	query, args := selectEvents(tableArtifactEvents, opts, "artifact_id", "name", "rarity", "topic")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query artifact events: %w", err)
	}
	defer rows.Close()

	var records []ArtifactEventRecord
	for rows.Next() {
		var e ArtifactEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp,
			&e.ArtifactID, &e.Name, &e.Rarity, &e.Topic); err != nil {
			return nil, fmt.Errorf("scan artifact event: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

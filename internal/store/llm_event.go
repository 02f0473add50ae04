package store

import (
	"context"
	"fmt"
	"sort"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.appendEvent(ctx, tableLLMEvents, llmEventColumns, []any{
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	})
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	query, args := selectEvents(tableLLMEvents, opts, llmEventColumns...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var records []LLMRequestEventRecord
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *e)
	}
	return records, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	query, args := builder().
		Select(append([]string{"id", "sequence", "timestamp"}, llmEventColumns...)...).
		From(entsql.Table(tableLLMEvents)).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanLLMEvent(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMRequestEventRecord, error) {
	var e LLMRequestEventRecord
	err := row.Scan(&e.ID, &e.Sequence, &e.Timestamp,
		&e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens,
		&e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &e, nil
}

// llmUsageRow is the subset of columns needed for usage aggregation.
type llmUsageRow struct {
	purpose, model string
	in, out        int
	latency        int64
	success        bool
}

func (r *eventRepo) llmUsageRows(ctx context.Context) ([]llmUsageRow, error) {
	query, args := builder().
		Select("purpose", "model", "input_tokens", "output_tokens", "latency_ms", "success").
		From(entsql.Table(tableLLMEvents)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []llmUsageRow
	for rows.Next() {
		var u llmUsageRow
		if err := rows.Scan(&u.purpose, &u.model, &u.in, &u.out, &u.latency, &u.success); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	rows, err := r.llmUsageRows(ctx)
	if err != nil {
		return nil, err
	}

	byPurpose := make(map[string]*LLMUsageStats)
	latency := make(map[string]int64)
	for _, u := range rows {
		st, ok := byPurpose[u.purpose]
		if !ok {
			st = &LLMUsageStats{Purpose: u.purpose}
			byPurpose[u.purpose] = st
		}
		st.Calls++
		if !u.success {
			st.Failures++
		}
		st.InputTokens += u.in
		st.OutputTokens += u.out
		latency[u.purpose] += u.latency
	}

	stats := make([]LLMUsageStats, 0, len(byPurpose))
	for purpose, st := range byPurpose {
		st.AvgLatencyMs = latency[purpose] / int64(st.Calls)
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Purpose < stats[j].Purpose })
	return stats, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	rows, err := r.llmUsageRows(ctx)
	if err != nil {
		return nil, err
	}

	byModel := make(map[string]*LLMModelUsage)
	for _, u := range rows {
		mu, ok := byModel[u.model]
		if !ok {
			mu = &LLMModelUsage{Model: u.model}
			byModel[u.model] = mu
		}
		mu.Calls++
		mu.InputTokens += u.in
		mu.OutputTokens += u.out
	}

	usage := make([]LLMModelUsage, 0, len(byModel))
	for _, mu := range byModel {
		usage = append(usage, *mu)
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].Model < usage[j].Model })
	return usage, nil
}

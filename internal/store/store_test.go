package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"player_states", "worksheet_events", "artifact_events", "llm_request_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestStateRepo_LoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.StateRepo().Load(context.Background(), "nexus_school_v1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStateRepo_SaveOverwrites(t *testing.T) {
	s := openTestStore(t)
	repo := s.StateRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, "nexus_school_v1", []byte(`{"xp":10}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, "nexus_school_v1", []byte(`{"xp":95}`)); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if err := repo.Save(ctx, "other", []byte(`{}`)); err != nil {
		t.Fatalf("save other: %v", err)
	}

	got, err := repo.Load(ctx, "nexus_school_v1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"xp":95}` {
		t.Errorf("loaded %s, want latest document", got)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM player_states").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestWorksheetEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, topic := range []string{"Math", "Science", "History"} {
		err := repo.AppendWorksheetEvent(ctx, WorksheetEventData{
			Topic:      topic,
			Grade:      4,
			Score:      i + 2,
			Total:      5,
			XPGained:   (i+2)*20 + 25,
			LevelAfter: 1,
			Decision:   "ADVANCE_TO_REWARD",
			Fallback:   i == 1,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryWorksheetEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Topic != "History" || events[2].Topic != "Math" {
		t.Errorf("expected newest first, got %s..%s", events[0].Topic, events[2].Topic)
	}
	if !events[1].Fallback || events[0].Fallback {
		t.Errorf("fallback flags not preserved: %+v", events)
	}
	if events[0].Sequence <= events[1].Sequence {
		t.Errorf("sequences not increasing: %d, %d", events[1].Sequence, events[0].Sequence)
	}
	if time.Since(events[0].Timestamp) > time.Minute {
		t.Errorf("timestamp = %v, want recent", events[0].Timestamp)
	}

	limited, err := repo.QueryWorksheetEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Topic != "History" {
		t.Errorf("limited = %+v", limited)
	}

	after, err := repo.QueryWorksheetEvents(ctx, QueryOpts{After: events[2].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 2 {
		t.Errorf("after = %d events, want 2", len(after))
	}
}

func TestSequenceSharedAcrossEventTypes(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendWorksheetEvent(ctx, WorksheetEventData{Topic: "Math", Score: 5, Total: 5}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendArtifactEvent(ctx, ArtifactEventData{ArtifactID: "a1", Name: "Gold Star", Rarity: "Common", Topic: "Math"}); err != nil {
		t.Fatal(err)
	}

	ws, err := repo.QueryWorksheetEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	arts, err := repo.QueryArtifactEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 1 || len(arts) != 1 {
		t.Fatalf("got %d worksheet and %d artifact events", len(ws), len(arts))
	}
	if arts[0].Sequence != ws[0].Sequence+1 {
		t.Errorf("artifact sequence %d should follow worksheet sequence %d", arts[0].Sequence, ws[0].Sequence)
	}
	if arts[0].Name != "Gold Star" || arts[0].ArtifactID != "a1" {
		t.Errorf("artifact = %+v", arts[0])
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "worksheet-gen", InputTokens: 100, OutputTokens: 400, LatencyMs: 1200, Success: true, RequestBody: "[user]\nhi", ResponseBody: `{"questions":[]}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "worksheet-gen", InputTokens: 100, LatencyMs: 800, Success: false, ErrorMessage: "boom"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "artifact-gen", InputTokens: 30, OutputTokens: 20, LatencyMs: 300, Success: true},
	}
	for i, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d events, want 3", len(list))
	}

	first := list[len(list)-1]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ResponseBody != `{"questions":[]}` || got.RequestBody != "[user]\nhi" {
		t.Fatalf("get = %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("missing event: %+v, %v", missing, err)
	}

	stats, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d purposes, want 2", len(stats))
	}
	ws := stats[1]
	if ws.Purpose != "worksheet-gen" || ws.Calls != 2 || ws.Failures != 1 || ws.InputTokens != 200 || ws.AvgLatencyMs != 1000 {
		t.Errorf("worksheet usage = %+v", ws)
	}

	models, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("model usage: %v", err)
	}
	if len(models) != 1 || models[0].Calls != 3 || models[0].OutputTokens != 420 {
		t.Errorf("model usage = %+v", models)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("NEXUS_DB", dir+"/custom/nexus.db")
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != dir+"/custom/nexus.db" {
		t.Errorf("path = %q", p)
	}

	t.Setenv("NEXUS_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != dir+"/nexus/nexus.db" {
		t.Errorf("path = %q", p)
	}
}

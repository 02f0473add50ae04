package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/app"
	"github.com/abhisek/nexus/internal/cache"
	"github.com/abhisek/nexus/internal/llm"
	"github.com/abhisek/nexus/internal/progress"
	"github.com/abhisek/nexus/internal/store"
	"github.com/abhisek/nexus/internal/worksheet"
)

// env bundles the opened store and the loaded application service.
type env struct {
	store   *store.Store
	service *app.Service
	online  bool
	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

// openStore opens the database for commands that only read events.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openApp opens the store, builds dependencies and loads the player state.
// The content provider and cache are optional: without them the app serves
// offline worksheets and rewards.
func openApp(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()

	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{store: st, closers: []func() error{st.Close}}

	eventRepo := st.EventRepo()

	var provider llm.Provider
	llmCfg := cfg.LLMProvider()
	if llmCfg.Provider == "" {
		logger.Debug("no LLM provider configured, using offline content")
	} else if err := llmCfg.Validate(); err != nil {
		logger.Warn("LLM provider not configured, AI features will be unavailable", "error", err)
	} else {
		provider, err = llm.NewProvider(ctx, llmCfg, eventRepo, logger)
		if err != nil {
			logger.Warn("LLM provider not configured, AI features will be unavailable", "error", err)
			provider = nil
		}
	}

	sourceOpts := []worksheet.SourceOption{worksheet.WithLogger(logger)}
	if provider != nil && cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("worksheet cache unavailable", "error", err)
		} else {
			logger.Debug("worksheet cache enabled", "ttl", c.TTL())
			e.closers = append(e.closers, c.Close)
			sourceOpts = append(sourceOpts, worksheet.WithCache(c))
		}
	}

	source := worksheet.NewSource(provider, worksheet.DefaultConfig(), sourceOpts...)
	engine := progress.NewEngine(source, progress.WithLogger(logger))

	svc, err := app.New(app.Options{
		StateRepo:     st.StateRepo(),
		EventRepo:     eventRepo,
		Engine:        engine,
		Content:       source,
		Logger:        logger,
		QuestionCount: cfg.Worksheet.Questions,
		TimeLimit:     cfg.Worksheet.TimeLimit,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	if err := svc.Load(ctx); err != nil {
		e.Close()
		return nil, err
	}

	e.service = svc
	e.online = source.Online()
	return e, nil
}

// runStatus prints the player's summary and the view they land on.
func runStatus(cmd *cobra.Command) error {
	e, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.service.Player()
	if err != nil {
		return err
	}
	view, err := e.service.View()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPlayerCard(out, p)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "View:      %s\n", view)
	if !e.online {
		fmt.Fprintln(out, "Content:   offline (set GEMINI_API_KEY to generate worksheets)")
	}
	if !p.GradeSelected() {
		fmt.Fprintln(out, "\nPick your grade to begin: nexus grade <1-12>")
		return nil
	}
	fmt.Fprintln(out, "\nStart a worksheet: nexus worksheet <subject>  (see: nexus subjects)")
	return nil
}

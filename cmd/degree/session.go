package main

import (
	"context"
	"degreetrack/internal/engine"
	"degreetrack/internal/store"
	"degreetrack/internal/tracker"
	"degreetrack/internal/transcript"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// openSession builds the tracker for the workspace. The returned close
// func flushes pending saves and closes the store.
func openSession(ctx context.Context) (*tracker.Tracker, func(), error) {
	tables, err := tracker.LoadTables(ctx, cfg.Tracker, workspace)
	if err != nil {
		return nil, nil, err
	}
	eng := engine.New(tables.Catalog, tables.Registry, tables.Equivalency,
		engine.WithHistoryLimit(cfg.Tracker.HistoryLimit))

	st, err := store.Open(ctx, cfg.Store, workspace)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	tr, err := tracker.New(ctx, eng, st, tracker.Options{
		Major:       cfg.Tracker.Major,
		SessionKey:  cfg.Tracker.SessionKey,
		SaveTimeout: cfg.GetStoreTimeout(),
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	logger.Debug("session opened", zap.String("id", tr.State().ID))

	closeFn := func() {
		_ = tr.Close()
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}
	return tr, closeFn, nil
}

// withSession runs fn against an open session.
func withSession(fn func(ctx context.Context, tr *tracker.Tracker) error) error {
	ctx := context.Background()
	tr, closeFn, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, tr)
}

// printOutcome prints an operation result. Rejections print the message
// and are returned as errors.
func printOutcome(out engine.Outcome, err error) error {
	if err != nil {
		return transcript.WithRetryHint(err)
	}
	fmt.Println(out.Message)
	if len(out.Skipped) > 0 {
		fmt.Printf("Skipped (invalid grade): %s\n", strings.Join(out.Skipped, ", "))
	}
	if len(out.Dropped) > 0 {
		codes := make([]string, len(out.Dropped))
		for i, c := range out.Dropped {
			codes[i] = c.String()
		}
		fmt.Printf("Replaced by transcript: %s\n", strings.Join(codes, ", "))
	}
	return nil
}

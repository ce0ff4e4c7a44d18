package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/kernmvcd/wnv-pipeline/internal/store"
)

// initStore opens and migrates the run-manifest database.
func initStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// runStage executes one pipeline stage with its outcome recorded in the run
// manifest. The stage's returned detail string becomes the manifest summary.
func runStage(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.StartStage(ctx, name)
	if err != nil {
		return err
	}

	detail, err := fn(ctx)
	if err != nil {
		if ferr := st.FailStage(ctx, run.ID, err.Error()); ferr != nil {
			zap.L().Warn("failed to record stage failure", zap.Error(ferr))
		}
		return err
	}

	if err := st.FinishStage(ctx, run.ID, detail); err != nil {
		return err
	}
	zap.L().Info("stage complete", zap.String("stage", name), zap.String("detail", detail))
	return nil
}

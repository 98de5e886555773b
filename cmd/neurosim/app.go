package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neurosim/internal/config"
	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/pathutil"
	"github.com/nvandessel/neurosim/internal/store"
)

// loadConfig reads --config when given, otherwise the default locations,
// and validates the result.
func loadConfig(cmd *cobra.Command) (*config.NeurosimConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.NeurosimConfig
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configPath is where 'config set' writes.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.Path()
}

// newLogger builds the operational logger. Logs go to w (stderr in
// production) so stdout stays clean for output and the MCP transport.
func newLogger(cfg *config.NeurosimConfig, w io.Writer) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
}

// session is one engine with its journal, event log and recorder.
type session struct {
	cfg      *config.NeurosimConfig
	log      *slog.Logger
	engine   *engine.Engine
	journal  store.Journal
	recorder *store.Recorder
	events   *logging.EventLog
	seed     uint64
}

// openSession creates the engine and wires its commit hooks to the journal
// and the event log.
func openSession(ctx context.Context, cfg *config.NeurosimConfig, log *slog.Logger) (*session, error) {
	s := &session{cfg: cfg, log: log, seed: cfg.Engine.Seed}
	if s.seed == 0 {
		s.seed = uint64(time.Now().UnixNano())
	}
	params := cfg.EngineParams()

	journal, err := openJournal(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.journal = journal

	s.recorder, err = store.NewRecorder(ctx, journal, s.seed, params.NeuronCount, log)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("failed to start journal run: %w", err)
	}

	if cfg.Logging.Events {
		dir := cfg.Logging.Dir
		if dir == "" {
			if dir, err = config.Dir(); err != nil {
				journal.Close()
				return nil, err
			}
		}
		if s.events, err = logging.NewEventLog(dir); err != nil {
			journal.Close()
			return nil, err
		}
	}

	s.engine, err = engine.New(params,
		engine.WithSeed(s.seed),
		engine.WithLogger(log),
		engine.WithCommitHook(s.recorder.Hook()),
		engine.WithCommitHook(eventHook(s.events, s.recorder.RunID())),
	)
	if err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	log.Info("session started", "run", s.recorder.RunID(), "seed", s.seed, "neurons", params.NeuronCount,
		"journal", journalLabel(cfg))
	return s, nil
}

// close finishes the journal run and releases files.
func (s *session) close(ctx context.Context) error {
	var firstErr error
	if s.engine != nil {
		if err := s.recorder.Finish(ctx, s.engine.Stats().Ticks); err != nil {
			firstErr = err
		}
	}
	if err := s.journal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.events.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// journalLabel names the journal backing a session for log output.
func journalLabel(cfg *config.NeurosimConfig) string {
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		return "memory"
	}
	return pathutil.RedactPath(cfg.Journal.Path)
}

// openJournal returns the SQLite journal when enabled with a path and an
// in-memory journal otherwise.
func openJournal(ctx context.Context, cfg *config.NeurosimConfig) (store.Journal, error) {
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		return store.NewInMemoryJournal(), nil
	}
	j, err := store.NewSQLiteJournal(ctx, cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

// eventHook writes every commit to the JSONL event log. A nil log makes
// it a no-op.
func eventHook(events *logging.EventLog, runID string) engine.CommitHook {
	return func(res engine.CommitResult) {
		events.Log("commit", map[string]any{
			"run":        runID,
			"outcome":    res.Outcome.String(),
			"points":     res.Points,
			"spread":     res.Spread,
			"concept_id": res.ConceptID,
			"label":      res.Label,
			"score":      res.Score,
			"tick":       res.Tick,
		})
	}
}

// stderr is where command logs go; tests swap it.
var stderr io.Writer = os.Stderr

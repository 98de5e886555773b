package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neurosim/internal/driver"
	"github.com/nvandessel/neurosim/internal/engine"
)

// runResult is the output of 'neurosim run'.
type runResult struct {
	RunID   string               `json:"run_id"`
	Seed    uint64               `json:"seed"`
	Ticks   int                  `json:"ticks"`
	Dt      float64              `json:"dt"`
	Commit  *engine.CommitResult `json:"commit,omitempty"`
	Stats   engine.Stats         `json:"stats"`
	Elapsed string               `json:"wall_time"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless simulation and print its counters",
		Long: `Run the engine for a fixed number of ticks without a display.

Halfway through, an optional stroke is drawn on the sensory layer and
committed: either the exact trace of a stored pattern (--draw) or an
explicit list of sensory ids (--stroke).

Examples:
  neurosim run --ticks 600
  neurosim run --draw SQUARE --json
  neurosim run --stroke 0,15,30,45,60,75,90 --realtime`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ticks, _ := cmd.Flags().GetInt("ticks")
			fps, _ := cmd.Flags().GetInt("fps")
			draw, _ := cmd.Flags().GetString("draw")
			stroke, _ := cmd.Flags().GetIntSlice("stroke")
			realtime, _ := cmd.Flags().GetBool("realtime")
			seed, _ := cmd.Flags().GetUint64("seed")

			if ticks < 0 {
				return fmt.Errorf("--ticks must be non-negative, got %d", ticks)
			}
			if draw != "" && len(stroke) > 0 {
				return fmt.Errorf("--draw and --stroke are mutually exclusive")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if fps > 0 {
				cfg.Driver.FPS = fps
			}
			if seed != 0 {
				cfg.Engine.Seed = seed
			}
			log := newLogger(cfg, stderr)

			ctx := cmdContext(cmd)
			sess, err := openSession(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			if draw != "" {
				if stroke, err = patternStroke(sess.engine, draw); err != nil {
					return err
				}
			}

			interval := cfg.Driver.Interval()
			dt := interval.Seconds()
			advance := func(n int) {
				if n <= 0 {
					return
				}
				if realtime {
					driver.New(sess.engine, interval, driver.WithMaxTicks(uint64(n)), driver.WithLogger(log)).Run(ctx)
					return
				}
				driver.Steps(sess.engine, n, dt)
			}

			start := time.Now()
			result := runResult{RunID: sess.recorder.RunID(), Seed: sess.seed, Ticks: ticks, Dt: dt}

			advance(ticks / 2)
			if len(stroke) > 0 {
				for i, id := range stroke {
					if err := sess.engine.AddToTrace(id, false); err != nil {
						return fmt.Errorf("stroke point %d: %w", i+1, err)
					}
				}
				res := sess.engine.CommitTrace()
				result.Commit = &res
			}
			advance(ticks - ticks/2)

			result.Stats = sess.engine.Stats()
			result.Elapsed = time.Since(start).Round(time.Millisecond).String()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			printRunResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().Int("ticks", 600, "Number of ticks to run")
	cmd.Flags().Int("fps", 0, "Tick rate (default from config)")
	cmd.Flags().String("draw", "", "Draw the trace of a stored pattern (e.g. SQUARE) halfway through")
	cmd.Flags().IntSlice("stroke", nil, "Sensory ids to draw halfway through")
	cmd.Flags().Bool("realtime", false, "Tick at wall-clock rate instead of as fast as possible")
	cmd.Flags().Uint64("seed", 0, "Random seed (default from config, 0 = time-based)")

	return cmd
}

// patternStroke returns the sensory cells whose projection is exactly the
// pattern labelled label.
func patternStroke(e *engine.Engine, label string) ([]int, error) {
	label = strings.ToUpper(label)
	for _, p := range e.Patterns() {
		if p.Label != label {
			continue
		}
		ids := make([]int, 0, len(p.Outputs))
		for _, out := range p.Outputs {
			id, ok := e.Layout().SensoryFor(out)
			if !ok {
				return nil, fmt.Errorf("pattern %s: output %d has no sensory cell", label, out)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	var labels []string
	for _, p := range e.Patterns() {
		labels = append(labels, p.Label)
	}
	return nil, fmt.Errorf("unknown pattern %q (stored: %s)", label, strings.Join(labels, ", "))
}

func printRunResult(cmd *cobra.Command, r runResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (seed %d): %d ticks of %.4fs in %s\n", r.RunID, r.Seed, r.Ticks, r.Dt, r.Elapsed)
	if c := r.Commit; c != nil {
		fmt.Fprintf(out, "\nCommit: %s", c.Outcome)
		if c.Label != "" {
			fmt.Fprintf(out, " %s (concept %d, score %.2f)", c.Label, c.ConceptID, c.Score)
		}
		fmt.Fprintf(out, " [%d points, spread %.1f]\n", c.Points, c.Spread)
	}
	s := r.Stats
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Neurons:      %d (%d connections)\n", s.Neurons, s.Connections)
	fmt.Fprintf(out, "Fired:        %d\n", s.Fired)
	fmt.Fprintf(out, "Signals:      %d emitted, %d delivered, %d live\n", s.Emitted, s.Delivered, s.LiveSignals)
	fmt.Fprintf(out, "Patterns:     %d of %d concept slots\n", s.Patterns, s.ConceptSlots)
	fmt.Fprintf(out, "Commits:      %d recognized, %d learned, %d rejected, %d learn-rejected, %d memory-full\n",
		s.Recognized, s.Learned, s.Rejected, s.LearnRejected, s.MemoryFull)
}

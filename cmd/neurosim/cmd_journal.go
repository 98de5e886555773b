package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neurosim/internal/store"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the commit journal",
		Long: `List runs and commit events recorded in the SQLite journal.

The journal is written when journal.enabled is true and journal.path is set
(default ~/.neurosim/journal.db).`,
	}

	cmd.AddCommand(
		newJournalListCmd(),
		newJournalRunsCmd(),
		newJournalStatsCmd(),
	)
	return cmd
}

// openJournalForRead opens the configured SQLite journal.
func openJournalForRead(cmd *cobra.Command) (*store.SQLiteJournal, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Journal.Path == "" {
		return nil, fmt.Errorf("journal.path is not set")
	}
	j, err := store.NewSQLiteJournal(cmdContext(cmd), cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newJournalListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent commit events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			kind, _ := cmd.Flags().GetString("kind")
			runID, _ := cmd.Flags().GetString("run")

			j, err := openJournalForRead(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			events, err := j.Events(cmdContext(cmd), store.Query{RunID: runID, Kind: kind, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"events": events,
					"count":  len(events),
				})
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events recorded.")
				return nil
			}
			for _, e := range events {
				label := e.Label
				if label == "" {
					label = "-"
				}
				fmt.Fprintf(out, "%s  %-14s %-14s concept=%-4d score=%.2f points=%-3d tick=%d\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, label, e.ConceptID, e.Score, e.Points, e.Tick)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of events (0 = all)")
	cmd.Flags().String("kind", "", "Only events of this outcome (recognized, learned, rejected, ...)")
	cmd.Flags().String("run", "", "Only events of this run id")
	return cmd
}

func newJournalRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			j, err := openJournalForRead(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.Runs(cmdContext(cmd), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"runs": runs, "count": len(runs)})
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				status := "running"
				if r.EndedAt != nil {
					status = r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
				}
				fmt.Fprintf(out, "%s  seed=%-20d neurons=%-4d ticks=%-8d %s\n", r.ID, r.Seed, r.Neurons, r.Ticks, status)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "Maximum number of runs (0 = all)")
	return cmd
}

func newJournalStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count commit events by outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetString("run")

			j, err := openJournalForRead(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			counts, err := j.Counts(cmdContext(cmd), runID)
			if err != nil {
				return fmt.Errorf("failed to count events: %w", err)
			}
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(counts)
			}
			kinds := make([]string, 0, len(counts))
			for k := range counts {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			out := cmd.OutOrStdout()
			for _, k := range kinds {
				fmt.Fprintf(out, "%-16s %d\n", k, counts[k])
			}
			return nil
		},
	}
	cmd.Flags().String("run", "", "Only count events of this run id")
	return cmd
}

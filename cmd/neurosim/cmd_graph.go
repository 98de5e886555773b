package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/network"
	"github.com/nvandessel/neurosim/internal/visualization"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the initial network wiring",
		Long: `Render the freshly wired network as Graphviz DOT, JSON, or an HTML viewer.

Examples:
  neurosim graph | dot -Tsvg > net.svg
  neurosim graph --role CONCEPT --role MOTOR --min-weight 1
  neurosim graph --format json -o net.json
  neurosim graph --format html --api http://localhost:8080 -o viewer.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			roleNames, _ := cmd.Flags().GetStringSlice("role")
			minWeight, _ := cmd.Flags().GetFloat64("min-weight")
			output, _ := cmd.Flags().GetString("output")
			apiURL, _ := cmd.Flags().GetString("api")
			seed, _ := cmd.Flags().GetUint64("seed")

			format, err := visualization.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			var roles []network.Role
			for _, name := range roleNames {
				r, err := network.ParseRole(name)
				if err != nil {
					return err
				}
				roles = append(roles, r)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = cfg.Engine.Seed
			}
			e, err := engine.New(cfg.EngineParams(), engine.WithSeed(seed), engine.WithLogger(logging.Discard()))
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}

			var data []byte
			switch format {
			case visualization.FormatDOT:
				data = []byte(visualization.RenderDOT(e.Snapshot(), visualization.DOTOptions{Roles: roles, MinWeight: minWeight}))
			case visualization.FormatJSON:
				data, err = json.MarshalIndent(visualization.RenderJSON(e.Snapshot(), e.Patterns()), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode graph: %w", err)
				}
				data = append(data, '\n')
			case visualization.FormatHTML:
				data, err = visualization.RenderHTML("neurosim", apiURL)
				if err != nil {
					return err
				}
			}

			if output != "" {
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, len(data))
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot, json, html")
	cmd.Flags().StringSlice("role", nil, "Only include these roles (DOT only, repeatable)")
	cmd.Flags().Float64("min-weight", 0, "Drop edges with absolute weight below this (DOT only)")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().String("api", "http://localhost:8080", "Snapshot server URL the HTML viewer polls")
	cmd.Flags().Uint64("seed", 0, "Wiring seed (default from config)")

	return cmd
}

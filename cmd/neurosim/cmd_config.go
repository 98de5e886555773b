package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neurosim/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage neurosim configuration",
		Long: `View and modify neurosim configuration settings.

Configuration is stored in ~/.neurosim/config.yaml unless --config is given.

Examples:
  neurosim config list                          # Show common settings
  neurosim config get trace.accept_threshold    # Get a specific setting
  neurosim config set engine.seed 42            # Set a setting
  neurosim config set journal.enabled true`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

// configKey binds a dot-notation key to one config field.
type configKey struct {
	get func(*config.NeurosimConfig) any
	set func(*config.NeurosimConfig, string) error
}

func intKey(field func(*config.NeurosimConfig) *int) configKey {
	return configKey{
		get: func(c *config.NeurosimConfig) any { return *field(c) },
		set: func(c *config.NeurosimConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer: %s", v)
			}
			*field(c) = n
			return nil
		},
	}
}

func floatKey(field func(*config.NeurosimConfig) *float64) configKey {
	return configKey{
		get: func(c *config.NeurosimConfig) any { return *field(c) },
		set: func(c *config.NeurosimConfig, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number: %s", v)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(field func(*config.NeurosimConfig) *bool) configKey {
	return configKey{
		get: func(c *config.NeurosimConfig) any { return *field(c) },
		set: func(c *config.NeurosimConfig, v string) error {
			*field(c) = v == "true" || v == "1"
			return nil
		},
	}
}

func stringKey(field func(*config.NeurosimConfig) *string) configKey {
	return configKey{
		get: func(c *config.NeurosimConfig) any { return *field(c) },
		set: func(c *config.NeurosimConfig, v string) error {
			*field(c) = v
			return nil
		},
	}
}

var configKeys = map[string]configKey{
	"engine.neuron_count": intKey(func(c *config.NeurosimConfig) *int { return &c.Engine.NeuronCount }),
	"engine.seed": {
		get: func(c *config.NeurosimConfig) any { return c.Engine.Seed },
		set: func(c *config.NeurosimConfig, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed: %s", v)
			}
			c.Engine.Seed = n
			return nil
		},
	},
	"engine.quiet": boolKey(func(c *config.NeurosimConfig) *bool { return &c.Engine.Quiet }),

	"dynamics.decay":             floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Dynamics.Decay }),
	"dynamics.refractory_period": floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Dynamics.RefractoryPeriod }),
	"dynamics.propagation_speed": floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Dynamics.PropagationSpeed }),
	"dynamics.noise_probability": floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Dynamics.NoiseProbability }),
	"dynamics.mask_attenuation":  floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Dynamics.MaskAttenuation }),

	"trace.accept_threshold":  floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Trace.AcceptThreshold }),
	"trace.min_commit_points": intKey(func(c *config.NeurosimConfig) *int { return &c.Trace.MinCommitPoints }),
	"trace.min_learn_points":  intKey(func(c *config.NeurosimConfig) *int { return &c.Trace.MinLearnPoints }),
	"trace.projection_weight": floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Trace.ProjectionWeight }),

	"driver.fps": intKey(func(c *config.NeurosimConfig) *int { return &c.Driver.FPS }),

	"journal.enabled": boolKey(func(c *config.NeurosimConfig) *bool { return &c.Journal.Enabled }),
	"journal.path":    stringKey(func(c *config.NeurosimConfig) *string { return &c.Journal.Path }),

	"server.http_addr":     stringKey(func(c *config.NeurosimConfig) *string { return &c.Server.HTTPAddr }),
	"server.gesture_rate":  floatKey(func(c *config.NeurosimConfig) *float64 { return &c.Server.GestureRate }),
	"server.gesture_burst": intKey(func(c *config.NeurosimConfig) *int { return &c.Server.GestureBurst }),

	"logging.level":  stringKey(func(c *config.NeurosimConfig) *string { return &c.Logging.Level }),
	"logging.format": stringKey(func(c *config.NeurosimConfig) *string { return &c.Logging.Format }),
	"logging.events": boolKey(func(c *config.NeurosimConfig) *bool { return &c.Logging.Events }),
	"logging.dir":    stringKey(func(c *config.NeurosimConfig) *string { return &c.Logging.Dir }),
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}
			out := cmd.OutOrStdout()
			path, _ := configPath(cmd)
			fmt.Fprintf(out, "Configuration (%s):\n\n", path)
			for _, key := range sortedConfigKeys() {
				fmt.Fprintf(out, "  %-26s %v\n", key+":", configKeys[key].get(cfg))
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			k, found := configKeys[key]
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}
			value := k.get(cfg)

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if cfg, err = loadConfig(cmd); err != nil {
					return err
				}
			}

			k, found := configKeys[key]
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}
			if err := k.set(cfg, value); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}

			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "updated",
					"key":    key,
					"value":  k.get(cfg),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, k.get(cfg))
			return nil
		},
	}
}

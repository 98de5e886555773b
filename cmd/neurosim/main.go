package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neurosim",
		Short: "Spiking neuron network simulator with shape recognition",
		Long: `neurosim simulates a layered network of neurons that exchange delayed
signals. Strokes drawn on the sensory layer are recognized against stored
patterns or learned as new concepts.

Run it headless with 'neurosim run', or drive it live over MCP and HTTP
with 'neurosim serve'.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.neurosim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newServeCmd(),
		newGraphCmd(),
		newConfigCmd(),
		newJournalCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

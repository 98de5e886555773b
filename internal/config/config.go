// Package config provides unified configuration loading for neurosim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neurosim/internal/constants"
	"github.com/nvandessel/neurosim/internal/engine"
)

// DirName is the per-user directory holding config, journal and event log.
const DirName = ".neurosim"

// NeurosimConfig contains all neurosim configuration settings.
type NeurosimConfig struct {
	// Engine sizes and seeds the network.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Dynamics holds the per-tick activation and propagation constants.
	Dynamics DynamicsConfig `json:"dynamics" yaml:"dynamics"`

	// Trace holds the input trace, recognition and learning constants.
	Trace TraceConfig `json:"trace" yaml:"trace"`

	// Driver configures the frame loop.
	Driver DriverConfig `json:"driver" yaml:"driver"`

	// Journal configures the commit event journal.
	Journal JournalConfig `json:"journal" yaml:"journal"`

	// Server configures the MCP and HTTP surfaces.
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// EngineConfig sizes the network.
type EngineConfig struct {
	// NeuronCount is the total population. Blocks past it are clipped.
	NeuronCount int `json:"neuron_count" yaml:"neuron_count"`

	// Seed makes placement, wiring and noise reproducible. 0 picks a
	// time-based seed.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Quiet disables spontaneous noise and residual emission.
	Quiet bool `json:"quiet" yaml:"quiet"`
}

// DynamicsConfig mirrors the dynamics and propagation fields of engine.Params.
type DynamicsConfig struct {
	Decay              float64 `json:"decay" yaml:"decay"`
	LatchDecay         float64 `json:"latch_decay" yaml:"latch_decay"`
	LatchFloor         float64 `json:"latch_floor" yaml:"latch_floor"`
	Epsilon            float64 `json:"epsilon" yaml:"epsilon"`
	RefractoryPeriod   float64 `json:"refractory_period" yaml:"refractory_period"`
	HigherLayerFloor   float64 `json:"higher_layer_floor" yaml:"higher_layer_floor"`
	AutoFireDepth      int     `json:"auto_fire_depth" yaml:"auto_fire_depth"`
	MinFireEnergy      float64 `json:"min_fire_energy" yaml:"min_fire_energy"`
	MaxDelta           float64 `json:"max_delta" yaml:"max_delta"`
	ConnectionFade     float64 `json:"connection_fade" yaml:"connection_fade"`
	NoiseProbability   float64 `json:"noise_probability" yaml:"noise_probability"`
	SensoryNoise       float64 `json:"sensory_noise" yaml:"sensory_noise"`
	HigherNoiseChance  float64 `json:"higher_noise_chance" yaml:"higher_noise_chance"`
	HigherNoise        float64 `json:"higher_noise" yaml:"higher_noise"`
	PropagationSpeed   float64 `json:"propagation_speed" yaml:"propagation_speed"`
	EnergyRetention    float64 `json:"energy_retention" yaml:"energy_retention"`
	PruneWeightFloor   float64 `json:"prune_weight_floor" yaml:"prune_weight_floor"`
	ResidualEmit       float64 `json:"residual_emit" yaml:"residual_emit"`
	ConceptActiveFloor float64 `json:"concept_active_floor" yaml:"concept_active_floor"`
	MaskAttenuation    float64 `json:"mask_attenuation" yaml:"mask_attenuation"`
}

// TraceConfig mirrors the trace and learning fields of engine.Params.
type TraceConfig struct {
	Glow               float64 `json:"glow" yaml:"glow"`
	Latch              float64 `json:"latch" yaml:"latch"`
	ImmediateFireDepth int     `json:"immediate_fire_depth" yaml:"immediate_fire_depth"`
	MinCommitPoints    int     `json:"min_commit_points" yaml:"min_commit_points"`
	MinCommitSpread    float64 `json:"min_commit_spread" yaml:"min_commit_spread"`
	MinLearnPoints     int     `json:"min_learn_points" yaml:"min_learn_points"`
	MinLearnSpread     float64 `json:"min_learn_spread" yaml:"min_learn_spread"`
	AcceptThreshold    float64 `json:"accept_threshold" yaml:"accept_threshold"`
	RecallDepth        int     `json:"recall_depth" yaml:"recall_depth"`
	ProjectionWeight   float64 `json:"projection_weight" yaml:"projection_weight"`
	HoverBump          float64 `json:"hover_bump" yaml:"hover_bump"`
}

// DriverConfig configures the frame loop.
type DriverConfig struct {
	// FPS is the target tick rate.
	FPS int `json:"fps" yaml:"fps"`
}

// Interval returns the tick period for FPS.
func (c DriverConfig) Interval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / constants.DefaultFPS
	}
	return time.Second / time.Duration(c.FPS)
}

// JournalConfig configures where commit events are recorded.
type JournalConfig struct {
	// Enabled turns journaling on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file. Empty keeps the journal in memory.
	// Supports ${VAR} expansion and a leading ~/.
	Path string `json:"path" yaml:"path"`
}

// ServerConfig configures the MCP and HTTP surfaces.
type ServerConfig struct {
	// HTTPAddr is the listen address of the snapshot server.
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`

	// GestureRate is the sustained rate of mutating MCP calls per second.
	GestureRate float64 `json:"gesture_rate" yaml:"gesture_rate"`

	// GestureBurst is the burst size of mutating MCP calls.
	GestureBurst int `json:"gesture_burst" yaml:"gesture_burst"`
}

// LoggingConfig configures neurosim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default),
	// "debug", or "trace". "trace" adds per-tick engine detail.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`

	// Events enables the JSONL commit event log under Dir.
	Events bool `json:"events" yaml:"events"`

	// Dir is where the event log is written. Defaults to ~/.neurosim.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a NeurosimConfig with the reference baselines.
func Default() *NeurosimConfig {
	p := engine.DefaultParams()
	return &NeurosimConfig{
		Engine: EngineConfig{
			NeuronCount: p.NeuronCount,
		},
		Dynamics: DynamicsConfig{
			Decay:              p.Decay,
			LatchDecay:         p.LatchDecay,
			LatchFloor:         p.LatchFloor,
			Epsilon:            p.Epsilon,
			RefractoryPeriod:   p.RefractoryPeriod,
			HigherLayerFloor:   p.HigherLayerFloor,
			AutoFireDepth:      p.AutoFireDepth,
			MinFireEnergy:      p.MinFireEnergy,
			MaxDelta:           p.MaxDelta,
			ConnectionFade:     p.ConnectionFade,
			NoiseProbability:   p.NoiseProbability,
			SensoryNoise:       p.SensoryNoise,
			HigherNoiseChance:  p.HigherNoiseChance,
			HigherNoise:        p.HigherNoise,
			PropagationSpeed:   p.PropagationSpeed,
			EnergyRetention:    p.EnergyRetention,
			PruneWeightFloor:   p.PruneWeightFloor,
			ResidualEmit:       p.ResidualEmit,
			ConceptActiveFloor: p.ConceptActiveFloor,
			MaskAttenuation:    p.MaskAttenuation,
		},
		Trace: TraceConfig{
			Glow:               p.TraceGlow,
			Latch:              p.TraceLatch,
			ImmediateFireDepth: p.ImmediateFireDepth,
			MinCommitPoints:    p.MinCommitPoints,
			MinCommitSpread:    p.MinCommitSpread,
			MinLearnPoints:     p.MinLearnPoints,
			MinLearnSpread:     p.MinLearnSpread,
			AcceptThreshold:    p.AcceptThreshold,
			RecallDepth:        p.RecallDepth,
			ProjectionWeight:   p.ProjectionWeight,
			HoverBump:          p.HoverBump,
		},
		Driver: DriverConfig{
			FPS: constants.DefaultFPS,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "~/" + DirName + "/journal.db",
		},
		Server: ServerConfig{
			HTTPAddr:     "localhost:0",
			GestureRate:  constants.DefaultGestureRate,
			GestureBurst: constants.DefaultGestureBurst,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// EngineParams converts the config into engine parameters.
func (c *NeurosimConfig) EngineParams() engine.Params {
	d, t := c.Dynamics, c.Trace
	p := engine.Params{
		NeuronCount: c.Engine.NeuronCount,

		Decay:             d.Decay,
		LatchDecay:        d.LatchDecay,
		LatchFloor:        d.LatchFloor,
		Epsilon:           d.Epsilon,
		RefractoryPeriod:  d.RefractoryPeriod,
		HigherLayerFloor:  d.HigherLayerFloor,
		AutoFireDepth:     d.AutoFireDepth,
		MinFireEnergy:     d.MinFireEnergy,
		MaxDelta:          d.MaxDelta,
		ConnectionFade:    d.ConnectionFade,
		NoiseProbability:  d.NoiseProbability,
		SensoryNoise:      d.SensoryNoise,
		HigherNoiseChance: d.HigherNoiseChance,
		HigherNoise:       d.HigherNoise,

		PropagationSpeed: d.PropagationSpeed,
		EnergyRetention:  d.EnergyRetention,
		PruneWeightFloor: d.PruneWeightFloor,
		ResidualEmit:     d.ResidualEmit,

		ConceptActiveFloor: d.ConceptActiveFloor,
		MaskAttenuation:    d.MaskAttenuation,

		TraceGlow:          t.Glow,
		TraceLatch:         t.Latch,
		ImmediateFireDepth: t.ImmediateFireDepth,
		MinCommitPoints:    t.MinCommitPoints,
		MinCommitSpread:    t.MinCommitSpread,
		MinLearnPoints:     t.MinLearnPoints,
		MinLearnSpread:     t.MinLearnSpread,
		AcceptThreshold:    t.AcceptThreshold,
		RecallDepth:        t.RecallDepth,
		ProjectionWeight:   t.ProjectionWeight,
		HoverBump:          t.HoverBump,
	}
	if c.Engine.Quiet {
		p = p.Quiet()
	}
	return p
}

// Dir returns the per-user neurosim directory (~/.neurosim).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.neurosim/config.yaml -> environment variables
func Load() (*NeurosimConfig, error) {
	config := Default()

	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)
	config.Journal.Path = ExpandPath(config.Journal.Path)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file omits keep their defaults.
func LoadFromFile(path string) (*NeurosimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Journal.Path = ExpandPath(config.Journal.Path)
	config.Logging.Dir = ExpandPath(config.Logging.Dir)

	return config, nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *NeurosimConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *NeurosimConfig) Validate() error {
	if c.Engine.NeuronCount < 0 {
		return fmt.Errorf("neuron_count must be non-negative, got %d", c.Engine.NeuronCount)
	}

	fractions := []struct {
		name  string
		value float64
	}{
		{"decay", c.Dynamics.Decay},
		{"latch_decay", c.Dynamics.LatchDecay},
		{"connection_fade", c.Dynamics.ConnectionFade},
		{"noise_probability", c.Dynamics.NoiseProbability},
		{"higher_noise_chance", c.Dynamics.HigherNoiseChance},
		{"energy_retention", c.Dynamics.EnergyRetention},
		{"residual_emit", c.Dynamics.ResidualEmit},
		{"mask_attenuation", c.Dynamics.MaskAttenuation},
		{"accept_threshold", c.Trace.AcceptThreshold},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %f", f.name, f.value)
		}
	}

	if c.Dynamics.MaxDelta <= 0 {
		return fmt.Errorf("max_delta must be positive, got %f", c.Dynamics.MaxDelta)
	}
	if c.Dynamics.PropagationSpeed <= 0 {
		return fmt.Errorf("propagation_speed must be positive, got %f", c.Dynamics.PropagationSpeed)
	}
	if c.Dynamics.AutoFireDepth < 0 || c.Trace.ImmediateFireDepth < 0 || c.Trace.RecallDepth < 0 {
		return fmt.Errorf("cascade depths must be non-negative")
	}
	if c.Trace.MinLearnPoints < c.Trace.MinCommitPoints {
		return fmt.Errorf("min_learn_points (%d) must be at least min_commit_points (%d)",
			c.Trace.MinLearnPoints, c.Trace.MinCommitPoints)
	}

	if c.Driver.FPS <= 0 || c.Driver.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000, got %d", c.Driver.FPS)
	}

	if c.Server.GestureRate < 0 || c.Server.GestureBurst < 0 {
		return fmt.Errorf("gesture_rate and gesture_burst must be non-negative")
	}

	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}
	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *NeurosimConfig) {
	if v := os.Getenv("NEUROSIM_NEURON_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Engine.NeuronCount = n
		}
	}
	if v := os.Getenv("NEUROSIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Engine.Seed = n
		}
	}
	if v := os.Getenv("NEUROSIM_QUIET"); v != "" {
		config.Engine.Quiet = v == "true" || v == "1"
	}

	if v := os.Getenv("NEUROSIM_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Driver.FPS = n
		}
	}

	if v := os.Getenv("NEUROSIM_ACCEPT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Trace.AcceptThreshold = f
		}
	}

	if v := os.Getenv("NEUROSIM_JOURNAL"); v != "" {
		config.Journal.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("NEUROSIM_JOURNAL_PATH"); v != "" {
		config.Journal.Path = ExpandPath(v)
	}

	if v := os.Getenv("NEUROSIM_HTTP_ADDR"); v != "" {
		config.Server.HTTPAddr = v
	}

	if v := os.Getenv("NEUROSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("NEUROSIM_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	if v := os.Getenv("NEUROSIM_EVENTS"); v != "" {
		config.Logging.Events = v == "true" || v == "1"
	}
}

// ExpandPath expands ${VAR} patterns and a leading ~/ in p.
func ExpandPath(p string) string {
	if strings.Contains(p, "${") {
		p = os.Expand(p, os.Getenv)
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

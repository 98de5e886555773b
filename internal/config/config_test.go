package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/neurosim/internal/engine"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Engine.NeuronCount != 800 {
		t.Errorf("expected NeuronCount 800, got %d", config.Engine.NeuronCount)
	}
	if config.Trace.AcceptThreshold != 0.35 {
		t.Errorf("expected AcceptThreshold 0.35, got %f", config.Trace.AcceptThreshold)
	}
	if config.Driver.FPS != 60 {
		t.Errorf("expected FPS 60, got %d", config.Driver.FPS)
	}
	if config.Journal.Enabled {
		t.Error("expected Journal.Enabled to be false by default")
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestEngineParams_RoundTripsDefaults(t *testing.T) {
	if got, want := Default().EngineParams(), engine.DefaultParams(); got != want {
		t.Errorf("EngineParams() = %+v\nwant %+v", got, want)
	}
}

func TestEngineParams_Quiet(t *testing.T) {
	config := Default()
	config.Engine.Quiet = true
	p := config.EngineParams()
	if p.NoiseProbability != 0 || p.ResidualEmit != 0 {
		t.Errorf("quiet params kept noise: %+v", p)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
engine:
  neuron_count: 500
  seed: 42
dynamics:
  decay: 0.8
trace:
  accept_threshold: 0.5
driver:
  fps: 30
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Engine.NeuronCount != 500 || config.Engine.Seed != 42 {
		t.Errorf("engine = %+v, want 500 neurons seed 42", config.Engine)
	}
	if config.Dynamics.Decay != 0.8 {
		t.Errorf("expected Decay 0.8, got %f", config.Dynamics.Decay)
	}
	// Unset fields keep defaults.
	if config.Dynamics.LatchDecay != 0.96 {
		t.Errorf("expected LatchDecay default 0.96, got %f", config.Dynamics.LatchDecay)
	}
	if config.Trace.AcceptThreshold != 0.5 {
		t.Errorf("expected AcceptThreshold 0.5, got %f", config.Trace.AcceptThreshold)
	}
	if config.Driver.Interval() != time.Second/30 {
		t.Errorf("Interval() = %v, want %v", config.Driver.Interval(), time.Second/30)
	}
	if config.Logging.Format != "json" {
		t.Errorf("expected Format json, got %s", config.Logging.Format)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("engine: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromFile(bad)
	if err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestLoadFromFile_PathExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	t.Setenv("NEUROSIM_TEST_DIR", tmpDir)

	content := "journal:\n  path: ${NEUROSIM_TEST_DIR}/journal.db\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if want := tmpDir + "/journal.db"; config.Journal.Path != want {
		t.Errorf("Journal.Path = %q, want %q", config.Journal.Path, want)
	}
}

func TestExpandPath_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got, want := ExpandPath("~/x/y.db"), filepath.Join(home, "x", "y.db"); got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath changed an absolute path: %q", got)
	}
}

func TestLoad_HomeFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := "engine:\n  neuron_count: 300\ndriver:\n  fps: 20\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NEUROSIM_FPS", "45")
	t.Setenv("NEUROSIM_SEED", "7")
	t.Setenv("NEUROSIM_QUIET", "1")
	t.Setenv("NEUROSIM_JOURNAL", "true")
	t.Setenv("NEUROSIM_LOG_LEVEL", "trace")
	t.Setenv("NEUROSIM_ACCEPT_THRESHOLD", "not-a-number")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Engine.NeuronCount != 300 {
		t.Errorf("NeuronCount = %d, want 300 from file", config.Engine.NeuronCount)
	}
	if config.Driver.FPS != 45 {
		t.Errorf("FPS = %d, want 45 from env", config.Driver.FPS)
	}
	if config.Engine.Seed != 7 || !config.Engine.Quiet {
		t.Errorf("engine = %+v, want seed 7 quiet", config.Engine)
	}
	if !config.Journal.Enabled {
		t.Error("expected journal enabled from env")
	}
	if want := filepath.Join(home, DirName, "journal.db"); config.Journal.Path != want {
		t.Errorf("Journal.Path = %q, want %q", config.Journal.Path, want)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("Level = %q, want trace", config.Logging.Level)
	}
	if config.Trace.AcceptThreshold != 0.35 {
		t.Errorf("unparseable env changed AcceptThreshold to %f", config.Trace.AcceptThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NeurosimConfig)
		wantErr string
	}{
		{"negative neurons", func(c *NeurosimConfig) { c.Engine.NeuronCount = -1 }, "neuron_count"},
		{"decay above one", func(c *NeurosimConfig) { c.Dynamics.Decay = 1.5 }, "decay"},
		{"negative attenuation", func(c *NeurosimConfig) { c.Dynamics.MaskAttenuation = -0.1 }, "mask_attenuation"},
		{"zero max delta", func(c *NeurosimConfig) { c.Dynamics.MaxDelta = 0 }, "max_delta"},
		{"zero speed", func(c *NeurosimConfig) { c.Dynamics.PropagationSpeed = 0 }, "propagation_speed"},
		{"negative depth", func(c *NeurosimConfig) { c.Trace.RecallDepth = -1 }, "depths"},
		{"learn below commit", func(c *NeurosimConfig) { c.Trace.MinLearnPoints = 2 }, "min_learn_points"},
		{"zero fps", func(c *NeurosimConfig) { c.Driver.FPS = 0 }, "fps"},
		{"negative rate", func(c *NeurosimConfig) { c.Server.GestureRate = -1 }, "gesture_rate"},
		{"bad level", func(c *NeurosimConfig) { c.Logging.Level = "verbose" }, "log level"},
		{"bad format", func(c *NeurosimConfig) { c.Logging.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := Default()
	config.Engine.Seed = 99
	config.Logging.Events = true

	if err := config.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Engine.Seed != 99 || !loaded.Logging.Events {
		t.Errorf("loaded = %+v", loaded)
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/session"
)

// testConfig is a small, deterministic network with no pre-training.
const testConfig = `network:
  seed: 11
  excitatory_interneurons: 30
  inhibitory_interneurons: 6
  reservoir_size: 12
  baseline_fraction: 0.1
  predictor_fan_in: 4
  speaker_fan_out: 2
encoders:
  text:
    enabled: true
    alphabet: "ab"
    pointer_dim: 64
    sparsity: 0.25
    population_size: 16
runtime:
  status_every: 0
  pre_train: []
recording:
  snapshot_every: 10
`

// isolateHome points HOME and the data directory at temp dirs so tests never
// touch a real ~/.brainsim/. It returns the config path and data directory.
func isolateHome(t *testing.T) (string, string) {
	t.Helper()
	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(home, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", home)

	dataDir := filepath.Join(tmpDir, "data")
	t.Setenv("BRAINSIM_DATA_DIR", dataDir)
	t.Setenv("BRAINSIM_RECORD", "")

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, dataDir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("version --json output is not JSON: %v", err)
	}
	if v["version"] != version {
		t.Errorf("version = %q, want %q", v["version"], version)
	}
}

func TestConfigShowAndValidate(t *testing.T) {
	cfgPath, _ := isolateHome(t)

	out, err := execute(t, "", "config", "show", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "reservoir_size: 12") {
		t.Errorf("config show missing file value:\n%s", out)
	}

	out, err = execute(t, "", "config", "validate", cfgPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("config validate = %q", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("network:\n  reservoir_size: 0\n"), 0600)
	if _, err := execute(t, "", "config", "validate", bad); err == nil {
		t.Error("config validate accepted reservoir_size 0")
	}
}

func TestConfigFlagKeepsEnvOverrides(t *testing.T) {
	cfgPath, dataDir := isolateHome(t)
	t.Setenv("BRAINSIM_SEED", "77")

	out, err := execute(t, "", "config", "show", "--json", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}

	var cfg config.BrainsimConfig
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("decode config: %v\n%s", err, out)
	}
	if cfg.Network.Seed != 77 {
		t.Errorf("seed = %d, want 77 from BRAINSIM_SEED", cfg.Network.Seed)
	}
	if cfg.Recording.Dir != dataDir {
		t.Errorf("recording dir = %q, want %q from BRAINSIM_DATA_DIR", cfg.Recording.Dir, dataDir)
	}
	if cfg.Network.ReservoirSize != 12 {
		t.Errorf("reservoir_size = %d, want 12 from the file", cfg.Network.ReservoirSize)
	}
}

func TestConfigShowDefaults(t *testing.T) {
	isolateHome(t)
	out, err := execute(t, "", "config", "show", "--defaults")
	if err != nil {
		t.Fatalf("config show --defaults: %v", err)
	}
	if !strings.Contains(out, "pattern: hello") {
		t.Errorf("defaults missing pre-training pattern:\n%s", out)
	}
}

func TestInvalidLogLevelRejected(t *testing.T) {
	cfgPath, _ := isolateHome(t)
	if _, err := execute(t, "", "graph", "--config", cfgPath, "--log-level", "loud"); err == nil {
		t.Error("graph accepted --log-level loud")
	}
}

func TestRunCmd_EOFEndsRun(t *testing.T) {
	cfgPath, dataDir := isolateHome(t)

	if _, err := execute(t, "ab+x", "run", "--config", cfgPath, "--record"); err != nil {
		t.Fatalf("run: %v", err)
	}

	summary, err := session.LoadSummary(dataDir)
	if err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if summary == nil {
		t.Fatal("run did not save a session summary")
	}
	if summary.Injected != 2 || summary.Rewarded != 1 {
		t.Errorf("Injected, Rewarded = %d, %d, want 2, 1", summary.Injected, summary.Rewarded)
	}

	out, err := execute(t, "", "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "stimuli:  2") {
		t.Errorf("status output missing stimuli count:\n%s", out)
	}

	out, err = execute(t, "", "record", "list", "--config", cfgPath, "--json")
	if err != nil {
		t.Fatalf("record list: %v", err)
	}
	var listed struct {
		Count int `json:"count"`
		Runs  []struct {
			ID string `json:"id"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("record list output: %v", err)
	}
	if listed.Count != 1 {
		t.Fatalf("recorded runs = %d, want 1", listed.Count)
	}

	out, err = execute(t, "", "record", "show", listed.Runs[0].ID, "--config", cfgPath)
	if err != nil {
		t.Fatalf("record show: %v", err)
	}
	if !strings.Contains(out, "+1.000 total") {
		t.Errorf("record show missing keyboard reward:\n%s", out)
	}
}

func TestStatusCmd_NoRuns(t *testing.T) {
	cfgPath, _ := isolateHome(t)
	out, err := execute(t, "", "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No session summary") {
		t.Errorf("status = %q", out)
	}
}

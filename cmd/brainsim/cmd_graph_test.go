package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGraphDefaultFormatIsDOT(t *testing.T) {
	cfgPath, _ := isolateHome(t)

	out, err := execute(t, "", "graph", "--config", cfgPath)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph brainsim {") {
		t.Errorf("default output is not DOT: %.80q", out)
	}
	if !strings.Contains(out, "SPEAK_a") {
		t.Error("default graph missing speaker for 'a'")
	}
}

func TestGraphJSON(t *testing.T) {
	cfgPath, _ := isolateHome(t)

	nodeCount := func(args ...string) int {
		t.Helper()
		out, err := execute(t, "", append([]string{"graph", "--config", cfgPath, "--format", "json"}, args...)...)
		if err != nil {
			t.Fatalf("graph --format json %v: %v", args, err)
		}
		var g struct {
			NodeCount int `json:"node_count"`
		}
		if err := json.Unmarshal([]byte(out), &g); err != nil {
			t.Fatalf("graph JSON: %v", err)
		}
		return g.NodeCount
	}

	def := nodeCount()
	// 12 reservoir, 2 predictors, 2 speakers and at least one sensory neuron per symbol.
	if def < 18 {
		t.Errorf("default node_count = %d, want at least 18", def)
	}
	// --all adds the 30 + 6 interneurons.
	if all := nodeCount("--all"); all-def != 36 {
		t.Errorf("--all node_count = %d, default = %d, want 36 more", all, def)
	}
}

func TestGraphHTMLWritesFile(t *testing.T) {
	cfgPath, _ := isolateHome(t)
	outPath := filepath.Join(t.TempDir(), "net.html")

	out, err := execute(t, "", "graph", "--config", cfgPath, "--format", "html", "-o", outPath, "--no-open")
	if err != nil {
		t.Fatalf("graph --format html: %v", err)
	}
	if !strings.Contains(out, "Graph written to "+outPath) {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read HTML: %v", err)
	}
	if !strings.Contains(string(data), "brainsim t=0") {
		t.Error("HTML page missing title")
	}
}

func TestGraphUnknownFormat(t *testing.T) {
	cfgPath, _ := isolateHome(t)
	if _, err := execute(t, "", "graph", "--config", cfgPath, "--format", "svg"); err == nil {
		t.Error("graph accepted --format svg")
	}
}

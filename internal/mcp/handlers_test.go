package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/pathutil"
)

func TestNewServer_NilSession(t *testing.T) {
	if _, err := NewServer(nil, &Config{}); err == nil {
		t.Error("NewServer(nil) should fail")
	}
}

func TestHandleInject(t *testing.T) {
	tests := []struct {
		name    string
		args    InjectInput
		wantMod string
		wantErr string
	}{
		{
			name:    "text symbol defaults modality",
			args:    InjectInput{Symbol: "a"},
			wantMod: "text",
		},
		{
			name:    "generic indices",
			args:    InjectInput{Modality: "touch", Indices: []int{0, 3, 7}},
			wantMod: "touch",
		},
		{
			name:    "modality name is normalized",
			args:    InjectInput{Modality: "TEXT", Symbol: "b"},
			wantMod: "text",
		},
		{
			name:    "control characters only",
			args:    InjectInput{Symbol: "\x00\x1b"},
			wantErr: "no printable characters",
		},
		{
			name:    "no stimulus",
			args:    InjectInput{Modality: "text"},
			wantErr: "is required",
		},
		{
			name:    "two stimuli",
			args:    InjectInput{Symbol: "a", Indices: []int{1}},
			wantErr: "only one stimulus field",
		},
		{
			name:    "unknown modality",
			args:    InjectInput{Modality: "smell", Symbol: "a"},
			wantErr: "smell",
		},
		{
			name:    "index out of range",
			args:    InjectInput{Modality: "touch", Indices: []int{8}},
			wantErr: "8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupTestServer(t)

			_, out, err := srv.handleInject(context.Background(), nil, tt.args)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("handleInject() error = nil, want containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("handleInject() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("handleInject() error = %v", err)
			}
			if out.Modality != tt.wantMod {
				t.Errorf("Modality = %q, want %q", out.Modality, tt.wantMod)
			}
			if out.Tick != 0 {
				t.Errorf("Tick = %d, want 0", out.Tick)
			}
			if injected, _ := srv.session.Counters(); injected != 1 {
				t.Errorf("injected = %d, want 1", injected)
			}
		})
	}
}

func TestHandleInject_UnknownModalityIsTyped(t *testing.T) {
	srv := setupTestServer(t)
	_, _, err := srv.handleInject(context.Background(), nil, InjectInput{Modality: "smell", Symbol: "x"})
	if !errors.Is(err, brain.ErrUnknownModality) {
		t.Errorf("handleInject() error = %v, want ErrUnknownModality", err)
	}
}

func TestHandleReward(t *testing.T) {
	srv := setupTestServer(t)

	_, out, err := srv.handleReward(context.Background(), nil, RewardInput{Amount: 0.5})
	if err != nil {
		t.Fatalf("handleReward() error = %v", err)
	}
	if out.Dopamine != 0.5 {
		t.Errorf("Dopamine = %v, want 0.5", out.Dopamine)
	}
	if _, rewarded := srv.session.Counters(); rewarded != 1 {
		t.Errorf("rewarded = %d, want 1", rewarded)
	}

	if _, _, err := srv.handleReward(context.Background(), nil, RewardInput{}); err == nil {
		t.Error("handleReward() with zero amount should fail")
	}
}

func TestHandleTick(t *testing.T) {
	srv := setupTestServer(t)

	_, out, err := srv.handleTick(context.Background(), nil, TickInput{})
	if err != nil {
		t.Fatalf("handleTick() error = %v", err)
	}
	if out.Status.Ticks != 1 {
		t.Errorf("Ticks = %d, want 1 for default tick count", out.Status.Ticks)
	}

	_, out, err = srv.handleTick(context.Background(), nil, TickInput{Ticks: 2500})
	if err != nil {
		t.Fatalf("handleTick(2500) error = %v", err)
	}
	if out.Status.Ticks != 2501 {
		t.Errorf("Ticks = %d, want 2501", out.Status.Ticks)
	}
}

func TestHandleTick_Bounds(t *testing.T) {
	srv := setupTestServer(t)
	for _, n := range []int{-1, MaxTicksPerCall + 1} {
		if _, _, err := srv.handleTick(context.Background(), nil, TickInput{Ticks: n}); err == nil {
			t.Errorf("handleTick(%d) should fail", n)
		}
	}
	if st := srv.session.Status(); st.Ticks != 0 {
		t.Errorf("rejected calls advanced the network to tick %d", st.Ticks)
	}
}

func TestHandleTick_Cancelled(t *testing.T) {
	srv := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := srv.handleTick(ctx, nil, TickInput{Ticks: 10}); !errors.Is(err, context.Canceled) {
		t.Errorf("handleTick() error = %v, want context.Canceled", err)
	}
}

func TestHandleTick_ReportsSpoken(t *testing.T) {
	rec, runID := openTestRecorder(t)
	srv := setupTestServerWithConfig(t, &Config{Recorder: rec, RunID: runID})

	fireSpeaker(srv, "b")
	_, out, err := srv.handleTick(context.Background(), nil, TickInput{Ticks: 5})
	if err != nil {
		t.Fatalf("handleTick() error = %v", err)
	}
	if len(out.Spoken) != 1 || out.Spoken[0].Symbol != "b" || out.Spoken[0].Tick != 0 {
		t.Fatalf("Spoken = %+v, want b at tick 0", out.Spoken)
	}

	text, err := rec.SpokenSymbols(context.Background(), runID)
	if err != nil {
		t.Fatalf("SpokenSymbols() error = %v", err)
	}
	if text != "b" {
		t.Errorf("recorded spoken = %q, want %q", text, "b")
	}

	// brain_tick and brain_spoken share one watch per modality.
	_, spoken, err := srv.handleSpoken(context.Background(), nil, SpokenInput{})
	if err != nil {
		t.Fatalf("handleSpoken() error = %v", err)
	}
	if len(spoken.Spoken) != 0 {
		t.Errorf("handleSpoken() = %+v, want nothing after brain_tick reported it", spoken.Spoken)
	}
}

func TestHandleSpoken(t *testing.T) {
	srv := setupTestServer(t)

	_, out, err := srv.handleSpoken(context.Background(), nil, SpokenInput{})
	if err != nil {
		t.Fatalf("handleSpoken() error = %v", err)
	}
	if out.Spoken == nil || len(out.Spoken) != 0 || out.Text != "" {
		t.Errorf("handleSpoken() on silent network = %+v, want empty non-nil list", out)
	}

	fireSpeaker(srv, "c")
	fireSpeaker(srv, "a")
	srv.session.Tick()

	_, out, err = srv.handleSpoken(context.Background(), nil, SpokenInput{Modality: "text"})
	if err != nil {
		t.Fatalf("handleSpoken() error = %v", err)
	}
	if out.Text != "ac" {
		t.Errorf("Text = %q, want %q", out.Text, "ac")
	}

	if _, _, err := srv.handleSpoken(context.Background(), nil, SpokenInput{Modality: "smell"}); !errors.Is(err, brain.ErrUnknownModality) {
		t.Errorf("handleSpoken(smell) error = %v, want ErrUnknownModality", err)
	}
}

func TestHandleRewardRecorded(t *testing.T) {
	rec, runID := openTestRecorder(t)
	srv := setupTestServerWithConfig(t, &Config{Recorder: rec, RunID: runID})

	for _, amt := range []float64{1, -0.25} {
		if _, _, err := srv.handleReward(context.Background(), nil, RewardInput{Amount: amt}); err != nil {
			t.Fatalf("handleReward(%v) error = %v", amt, err)
		}
	}
	total, err := rec.RewardTotal(context.Background(), runID)
	if err != nil {
		t.Fatalf("RewardTotal() error = %v", err)
	}
	if total != 0.75 {
		t.Errorf("RewardTotal() = %v, want 0.75", total)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := setupTestServer(t)
	srv.session.TickN(3)
	if _, _, err := srv.handleInject(context.Background(), nil, InjectInput{Symbol: "a"}); err != nil {
		t.Fatalf("handleInject() error = %v", err)
	}

	_, out, err := srv.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if out.Status.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3", out.Status.Ticks)
	}
	if out.Injected != 1 || out.Rewarded != 0 {
		t.Errorf("Injected, Rewarded = %d, %d, want 1, 0", out.Injected, out.Rewarded)
	}
	if out.Status.Modalities["touch"] != 8 {
		t.Errorf("Modalities[touch] = %d, want 8", out.Status.Modalities["touch"])
	}
}

func TestHandleGraph(t *testing.T) {
	srv := setupTestServer(t)

	_, dot, err := srv.handleGraph(context.Background(), nil, GraphInput{})
	if err != nil {
		t.Fatalf("handleGraph() error = %v", err)
	}
	if dot.Format != "dot" || !strings.HasPrefix(dot.Graph, "digraph brainsim {") {
		t.Errorf("default graph = %q (%s), want DOT", dot.Graph, dot.Format)
	}
	if dot.NodeCount == 0 {
		t.Error("NodeCount = 0, want sensory and speaker neurons")
	}

	_, js, err := srv.handleGraph(context.Background(), nil, GraphInput{Format: "json"})
	if err != nil {
		t.Fatalf("handleGraph(json) error = %v", err)
	}
	var parsed struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(js.Graph), &parsed); err != nil {
		t.Fatalf("graph is not JSON: %v", err)
	}
	if len(parsed.Nodes) != js.NodeCount {
		t.Errorf("nodes = %d, NodeCount = %d", len(parsed.Nodes), js.NodeCount)
	}

	if _, _, err := srv.handleGraph(context.Background(), nil, GraphInput{Format: "svg"}); err == nil {
		t.Error("handleGraph(svg) should fail")
	}
}

func TestHandleGraph_RateLimited(t *testing.T) {
	srv := setupTestServer(t)
	var lastErr error
	for i := 0; i < 10; i++ {
		_, _, lastErr = srv.handleGraph(context.Background(), nil, GraphInput{})
	}
	if lastErr == nil || !strings.Contains(lastErr.Error(), "rate limit") {
		t.Errorf("10 rapid brain_graph calls: last error = %v, want rate limit", lastErr)
	}
}

func TestStatusResource(t *testing.T) {
	srv := setupTestServer(t)
	srv.session.TickN(7)

	res, err := srv.handleStatusResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleStatusResource() error = %v", err)
	}
	if len(res.Contents) != 1 {
		t.Fatalf("Contents = %d, want 1", len(res.Contents))
	}
	var st brain.Status
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &st); err != nil {
		t.Fatalf("resource is not a status: %v", err)
	}
	if st.Ticks != 7 {
		t.Errorf("Ticks = %d, want 7", st.Ticks)
	}
}

func TestHandleExport(t *testing.T) {
	dir := t.TempDir()
	srv := setupTestServerWithConfig(t, &Config{DataDir: dir})
	srv.session.TickN(5)

	_, out, err := srv.handleExport(context.Background(), nil, ExportInput{Name: "net.arrow"})
	if err != nil {
		t.Fatalf("handleExport() error = %v", err)
	}
	if out.Format != "arrow" || out.Tick != 5 || out.Synapses == 0 {
		t.Errorf("handleExport() = %+v", out)
	}
	want := filepath.Join(dir, pathutil.ExportsDir, "net.arrow")
	if out.Path != want {
		t.Errorf("Path = %q, want %q", out.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("export file missing: %v", err)
	}

	if _, _, err := srv.handleExport(context.Background(), nil, ExportInput{Name: "../audit.jsonl"}); err == nil {
		t.Error("handleExport() wrote outside the exports directory")
	}
	if _, _, err := srv.handleExport(context.Background(), nil, ExportInput{Name: "x.csv", Format: "csv"}); err == nil {
		t.Error("handleExport() accepted format csv")
	}
}

func TestHandleExport_NoDataDir(t *testing.T) {
	srv := setupTestServer(t)
	if _, _, err := srv.handleExport(context.Background(), nil, ExportInput{Name: "net.jsonl"}); err == nil {
		t.Error("handleExport() without a data directory should fail")
	}
}

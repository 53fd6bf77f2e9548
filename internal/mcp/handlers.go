package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/export"
	"github.com/nvandessel/brainsim/internal/pathutil"
	"github.com/nvandessel/brainsim/internal/ratelimit"
	"github.com/nvandessel/brainsim/internal/sanitize"
	"github.com/nvandessel/brainsim/internal/session"
	"github.com/nvandessel/brainsim/internal/visualization"
)

// registerTools registers all brain MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_inject",
		Description: "Inject a stimulus (text symbol, index set, intensity grid or spectrum) into a modality; it is integrated on the next tick",
	}, s.handleInject)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_reward",
		Description: "Deliver a dopamine reward (positive) or punishment (negative) to the network",
	}, s.handleReward)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_tick",
		Description: "Advance the simulation by a number of ticks (1 tick = 1 simulated ms) and report what the network said",
	}, s.handleTick)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_status",
		Description: "Get a snapshot of the network: tick, spike count, dopamine, frozen synapses, context register",
	}, s.handleStatus)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_spoken",
		Description: "Read symbols whose speaker neurons fired since the previous call",
	}, s.handleSpoken)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_graph",
		Description: "Render the sensory, reservoir, predictor and speaker populations as DOT or JSON",
	}, s.handleGraph)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "brain_export",
		Description: "Write the synapse table (weights, masks, eligibility, frozen state) to a file in the data directory as JSONL or Apache Arrow",
	}, s.handleExport)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "brainsim://status",
		Name:        "brainsim-status",
		Description: "Current network status as JSON.",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

func (s *Server) handleStatusResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.session.Status(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{{
			URI:      "brainsim://status",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// stimulusOf picks the single stimulus field that is set.
func stimulusOf(args InjectInput) (any, error) {
	var set []string
	var stim any
	if args.Symbol != "" {
		set = append(set, "symbol")
		stim = args.Symbol
	}
	if args.Indices != nil {
		set = append(set, "indices")
		stim = args.Indices
	}
	if args.Grid != nil {
		set = append(set, "grid")
		stim = args.Grid
	}
	if args.Spectrum != nil {
		set = append(set, "spectrum")
		stim = args.Spectrum
	}

	switch len(set) {
	case 0:
		return nil, fmt.Errorf("one of 'symbol', 'indices', 'grid' or 'spectrum' is required")
	case 1:
		return stim, nil
	default:
		return nil, fmt.Errorf("only one stimulus field may be set, got %s", strings.Join(set, ", "))
	}
}

func (s *Server) handleInject(ctx context.Context, req *sdk.CallToolRequest, args InjectInput) (_ *sdk.CallToolResult, _ InjectOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_inject", start, retErr, sanitizeToolParams(map[string]interface{}{
			"modality": args.Modality, "symbol": args.Symbol, "indices": args.Indices,
		}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "brain_inject"); err != nil {
		return nil, InjectOutput{}, err
	}

	modality := sanitize.Name(args.Modality)
	if modality == "" {
		modality = session.TextModality
	}
	if args.Symbol != "" {
		if args.Symbol = sanitize.Symbol(args.Symbol); args.Symbol == "" {
			return nil, InjectOutput{}, fmt.Errorf("'symbol' has no printable characters")
		}
	}
	stim, err := stimulusOf(args)
	if err != nil {
		return nil, InjectOutput{}, err
	}

	if err := s.session.Inject(modality, stim); err != nil {
		return nil, InjectOutput{}, err
	}

	tick := s.session.Status().Ticks
	return nil, InjectOutput{
		Modality: modality,
		Tick:     tick,
		Message:  fmt.Sprintf("stimulus queued for %s at tick %d", modality, tick),
	}, nil
}

func (s *Server) handleReward(ctx context.Context, req *sdk.CallToolRequest, args RewardInput) (_ *sdk.CallToolResult, _ RewardOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_reward", start, retErr, sanitizeToolParams(map[string]interface{}{
			"amount": args.Amount,
		}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "brain_reward"); err != nil {
		return nil, RewardOutput{}, err
	}
	if args.Amount == 0 {
		return nil, RewardOutput{}, fmt.Errorf("'amount' must be non-zero")
	}

	s.session.Reward(args.Amount)
	st := s.session.Status()

	if s.recorder != nil {
		if err := s.recorder.RecordReward(ctx, s.runID, st.Ticks, args.Amount, "mcp"); err != nil {
			s.logger.Warn("failed to record reward", "error", err)
		}
	}

	return nil, RewardOutput{
		Amount:   args.Amount,
		Dopamine: st.Dopamine,
		Tick:     st.Ticks,
	}, nil
}

func (s *Server) handleTick(ctx context.Context, req *sdk.CallToolRequest, args TickInput) (_ *sdk.CallToolResult, _ TickOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_tick", start, retErr, sanitizeToolParams(map[string]interface{}{
			"ticks": args.Ticks,
		}))
	}()

	ticks := args.Ticks
	if ticks == 0 {
		ticks = 1
	}
	if ticks < 0 || ticks > MaxTicksPerCall {
		return nil, TickOutput{}, fmt.Errorf("'ticks' must be between 1 and %d, got %d", MaxTicksPerCall, ticks)
	}
	if err := ratelimit.CheckLimitN(s.limiters, "brain_tick", ratelimit.TickCost(ticks)); err != nil {
		return nil, TickOutput{}, err
	}

	// Tick in slices so cancellation is honored and other callers interleave.
	const slice = 1000
	var spoken []session.Spoken
	var st brain.Status
	for done := 0; done < ticks; {
		if err := ctx.Err(); err != nil {
			return nil, TickOutput{}, err
		}
		n := min(slice, ticks-done)
		st = s.session.TickN(n)
		spoken = append(spoken, s.poll(session.TextModality)...)
		done += n
	}
	s.recordSpoken(ctx, spoken)

	return nil, TickOutput{Status: st, Spoken: spoken}, nil
}

func (s *Server) handleStatus(ctx context.Context, req *sdk.CallToolRequest, args StatusInput) (_ *sdk.CallToolResult, _ StatusOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_status", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.limiters, "brain_status"); err != nil {
		return nil, StatusOutput{}, err
	}

	injected, rewarded := s.session.Counters()
	return nil, StatusOutput{
		Status:   s.session.Status(),
		Injected: injected,
		Rewarded: rewarded,
	}, nil
}

func (s *Server) handleSpoken(ctx context.Context, req *sdk.CallToolRequest, args SpokenInput) (_ *sdk.CallToolResult, _ SpokenOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_spoken", start, retErr, sanitizeToolParams(map[string]interface{}{
			"modality": args.Modality,
		}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "brain_spoken"); err != nil {
		return nil, SpokenOutput{}, err
	}

	modality := sanitize.Name(args.Modality)
	if modality == "" {
		modality = session.TextModality
	}
	known := false
	s.session.Do(func(net *brain.Network) {
		for _, name := range net.Modalities() {
			known = known || name == modality
		}
	})
	if !known {
		return nil, SpokenOutput{}, fmt.Errorf("modality %q: %w", modality, brain.ErrUnknownModality)
	}

	spoken := s.poll(modality)
	if spoken == nil {
		spoken = []session.Spoken{}
	}
	s.recordSpoken(ctx, spoken)

	var text strings.Builder
	for _, sp := range spoken {
		text.WriteString(sp.Symbol)
	}
	return nil, SpokenOutput{Spoken: spoken, Text: text.String()}, nil
}

func (s *Server) handleGraph(ctx context.Context, req *sdk.CallToolRequest, args GraphInput) (_ *sdk.CallToolResult, _ GraphOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_graph", start, retErr, sanitizeToolParams(map[string]interface{}{
			"format": args.Format, "min_weight": args.MinWeight,
		}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "brain_graph"); err != nil {
		return nil, GraphOutput{}, err
	}

	format := visualization.Format(args.Format)
	if format == "" {
		format = visualization.FormatDOT
	}
	if format != visualization.FormatDOT && format != visualization.FormatJSON {
		return nil, GraphOutput{}, fmt.Errorf("'format' must be 'dot' or 'json', got %q", args.Format)
	}

	opts := visualization.Options{MinWeight: args.MinWeight}
	var out GraphOutput
	var err error
	s.session.Do(func(net *brain.Network) {
		g := visualization.CollectGraph(net, opts)
		out.NodeCount = len(g.Nodes)
		out.EdgeCount = len(g.Edges)
		out.Format = string(format)
		if format == visualization.FormatDOT {
			out.Graph = visualization.RenderDOT(net, opts)
			return
		}
		var data []byte
		data, err = json.Marshal(g)
		out.Graph = string(data)
	})
	if err != nil {
		return nil, GraphOutput{}, fmt.Errorf("marshal graph: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleExport(ctx context.Context, req *sdk.CallToolRequest, args ExportInput) (_ *sdk.CallToolResult, _ ExportOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("brain_export", start, retErr, sanitizeToolParams(map[string]interface{}{
			"name": args.Name, "format": args.Format,
		}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "brain_export"); err != nil {
		return nil, ExportOutput{}, err
	}
	if s.dataDir == "" {
		return nil, ExportOutput{}, fmt.Errorf("export is disabled: server has no data directory")
	}

	path, err := pathutil.ExportPath(s.dataDir, args.Name)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	format := export.Format(args.Format)
	switch format {
	case "":
		format = export.FormatFor(path)
	case export.FormatJSONL, export.FormatArrow:
	default:
		return nil, ExportOutput{}, fmt.Errorf("'format' must be 'jsonl' or 'arrow', got %q", args.Format)
	}

	var rows []export.SynapseRow
	var tick int64
	s.session.Do(func(net *brain.Network) {
		rows = export.Rows(net)
		tick = net.Time()
	})
	if err := export.WriteFile(path, format, rows); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("export to %s: %w", pathutil.RedactPath(path), err)
	}

	return nil, ExportOutput{
		Path:     path,
		Format:   string(format),
		Synapses: len(rows),
		Tick:     tick,
	}, nil
}

func (s *Server) recordSpoken(ctx context.Context, spoken []session.Spoken) {
	if s.recorder == nil {
		return
	}
	for _, sp := range spoken {
		if err := s.recorder.RecordSpoken(ctx, s.runID, sp.Tick, sp.Modality, sp.Symbol); err != nil {
			s.logger.Warn("failed to record spoken symbol", "error", err)
			return
		}
	}
}

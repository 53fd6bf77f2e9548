package mcp

import (
	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/session"
)

// InjectInput defines the input for the brain_inject tool. Exactly one of
// Symbol, Indices, Grid or Spectrum should be set.
type InjectInput struct {
	Modality string      `json:"modality,omitempty" jsonschema:"Modality name (default text)"`
	Symbol   string      `json:"symbol,omitempty" jsonschema:"Symbol for text modalities, e.g. a single character"`
	Indices  []int       `json:"indices,omitempty" jsonschema:"Active input indices for generic modalities"`
	Grid     [][]float64 `json:"grid,omitempty" jsonschema:"Intensity grid for visual modalities, values in [0,1]"`
	Spectrum []float64   `json:"spectrum,omitempty" jsonschema:"Band energies for audio modalities"`
}

// InjectOutput defines the output for the brain_inject tool.
type InjectOutput struct {
	Modality string `json:"modality" jsonschema:"Modality the stimulus was delivered to"`
	Tick     int64  `json:"tick" jsonschema:"Tick at which the stimulus will be integrated"`
	Message  string `json:"message" jsonschema:"Human-readable result message"`
}

// RewardInput defines the input for the brain_reward tool.
type RewardInput struct {
	Amount float64 `json:"amount" jsonschema:"Dopamine to add; positive rewards, negative punishes"`
}

// RewardOutput defines the output for the brain_reward tool.
type RewardOutput struct {
	Amount   float64 `json:"amount" jsonschema:"Reward delivered"`
	Dopamine float64 `json:"dopamine" jsonschema:"Dopamine level after the reward"`
	Tick     int64   `json:"tick" jsonschema:"Current tick"`
}

// TickInput defines the input for the brain_tick tool.
type TickInput struct {
	Ticks int `json:"ticks,omitempty" jsonschema:"Number of ticks to advance (default 1)"`
}

// TickOutput defines the output for the brain_tick tool.
type TickOutput struct {
	Status brain.Status     `json:"status" jsonschema:"Network status after ticking"`
	Spoken []session.Spoken `json:"spoken,omitempty" jsonschema:"Text symbols spoken while ticking"`
}

// StatusInput defines the input for the brain_status tool.
type StatusInput struct{}

// StatusOutput defines the output for the brain_status tool.
type StatusOutput struct {
	Status   brain.Status `json:"status" jsonschema:"Point-in-time network summary"`
	Injected int          `json:"injected" jsonschema:"Stimuli accepted this session"`
	Rewarded int          `json:"rewarded" jsonschema:"External rewards delivered this session"`
}

// SpokenInput defines the input for the brain_spoken tool.
type SpokenInput struct {
	Modality string `json:"modality,omitempty" jsonschema:"Modality whose speakers to read (default text)"`
}

// SpokenOutput defines the output for the brain_spoken tool.
type SpokenOutput struct {
	Spoken []session.Spoken `json:"spoken" jsonschema:"Symbols spoken since the previous call"`
	Text   string           `json:"text" jsonschema:"Spoken symbols concatenated in order"`
}

// GraphInput defines the input for the brain_graph tool.
type GraphInput struct {
	Format    string  `json:"format,omitempty" jsonschema:"Output format: dot or json (default dot)"`
	MinWeight float64 `json:"min_weight,omitempty" jsonschema:"Drop synapses with absolute weight below this"`
}

// GraphOutput defines the output for the brain_graph tool.
type GraphOutput struct {
	Format    string `json:"format" jsonschema:"Format of Graph"`
	Graph     string `json:"graph" jsonschema:"Rendered graph"`
	NodeCount int    `json:"node_count" jsonschema:"Number of rendered neurons"`
	EdgeCount int    `json:"edge_count" jsonschema:"Number of rendered synapses"`
}

// ExportInput defines the input for the brain_export tool.
type ExportInput struct {
	Name   string `json:"name" jsonschema:"File name under <data dir>/exports, e.g. run1.arrow"`
	Format string `json:"format,omitempty" jsonschema:"jsonl or arrow (default from the file extension)"`
}

// ExportOutput defines the output for the brain_export tool.
type ExportOutput struct {
	Path     string `json:"path" jsonschema:"Path the synapse table was written to"`
	Format   string `json:"format" jsonschema:"Format written"`
	Synapses int    `json:"synapses" jsonschema:"Number of rows written"`
	Tick     int64  `json:"tick" jsonschema:"Tick at which the table was captured"`
}

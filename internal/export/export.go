// Package export dumps the synapse table of a network for offline analysis.
// JSONL is line-oriented and greppable; Arrow IPC loads directly into
// pandas, polars or DuckDB.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/models"
)

// SynapseRow is one exported synapse.
type SynapseRow struct {
	Tick        int64   `json:"tick"`
	Index       int     `json:"index"`
	Pre         int     `json:"pre"`
	Post        int     `json:"post"`
	PreLabel    string  `json:"pre_label"`
	PostLabel   string  `json:"post_label"`
	Weight      float64 `json:"weight"`
	Mask        uint32  `json:"mask"`
	Eligibility float64 `json:"eligibility"`
	Frozen      bool    `json:"frozen"`
	AboveSince  int64   `json:"above_since"`
}

// Rows snapshots every synapse in arena order. The caller must own net.
func Rows(net *brain.Network) []SynapseRow {
	rows := make([]SynapseRow, 0, net.NumSynapses())
	names := make([]string, net.NumNeurons())
	for i := range names {
		nr := net.Neuron(i)
		names[i] = nr.Name()
	}

	tick := net.Time()
	net.Synapses(func(idx int, s models.Synapse) bool {
		rows = append(rows, SynapseRow{
			Tick:        tick,
			Index:       idx,
			Pre:         s.Pre,
			Post:        s.Post,
			PreLabel:    names[s.Pre],
			PostLabel:   names[s.Post],
			Weight:      s.Weight,
			Mask:        s.Mask,
			Eligibility: s.Eligibility,
			Frozen:      s.Frozen,
			AboveSince:  s.AboveSince,
		})
		return true
	})
	return rows
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, rows []SynapseRow) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadJSONL reads rows written by WriteJSONL. Lines that fail to parse are
// skipped with a warning to stderr.
func ReadJSONL(r io.Reader) ([]SynapseRow, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var rows []SynapseRow
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row SynapseRow
		if err := json.Unmarshal(line, &row); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to parse line %d: %v\n", lineNum, err)
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return rows, nil
}

// Format is an export file format.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatArrow Format = "arrow"
)

// FormatFor picks the format from a file extension. Unknown extensions
// default to JSONL.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".arrow", ".ipc", ".feather":
		return FormatArrow
	default:
		return FormatJSONL
	}
}

// WriteFile writes rows to path in the given format, via a temp file and rename.
func WriteFile(path string, format Format, rows []SynapseRow) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	switch format {
	case FormatArrow:
		err = WriteArrow(f, rows)
	case FormatJSONL:
		err = WriteJSONL(f, rows)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename export file: %w", err)
	}
	return nil
}

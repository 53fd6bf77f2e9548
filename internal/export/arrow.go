package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// SynapseSchema is the Arrow schema of the synapse table.
var SynapseSchema = arrow.NewSchema([]arrow.Field{
	{Name: "tick", Type: arrow.PrimitiveTypes.Int64},
	{Name: "index", Type: arrow.PrimitiveTypes.Int64},
	{Name: "pre", Type: arrow.PrimitiveTypes.Int64},
	{Name: "post", Type: arrow.PrimitiveTypes.Int64},
	{Name: "pre_label", Type: arrow.BinaryTypes.String},
	{Name: "post_label", Type: arrow.BinaryTypes.String},
	{Name: "weight", Type: arrow.PrimitiveTypes.Float64},
	{Name: "mask", Type: arrow.PrimitiveTypes.Uint32},
	{Name: "eligibility", Type: arrow.PrimitiveTypes.Float64},
	{Name: "frozen", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "above_since", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// WriteArrow writes rows as a single record batch in Arrow IPC file format.
// The file footer is written after seeking, so w must be seekable.
func WriteArrow(w io.WriteSeeker, rows []SynapseRow) error {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, SynapseSchema)
	defer b.Release()

	tick := b.Field(0).(*array.Int64Builder)
	index := b.Field(1).(*array.Int64Builder)
	pre := b.Field(2).(*array.Int64Builder)
	post := b.Field(3).(*array.Int64Builder)
	preLabel := b.Field(4).(*array.StringBuilder)
	postLabel := b.Field(5).(*array.StringBuilder)
	weight := b.Field(6).(*array.Float64Builder)
	mask := b.Field(7).(*array.Uint32Builder)
	elig := b.Field(8).(*array.Float64Builder)
	frozen := b.Field(9).(*array.BooleanBuilder)
	above := b.Field(10).(*array.Int64Builder)

	for _, r := range rows {
		tick.Append(r.Tick)
		index.Append(int64(r.Index))
		pre.Append(int64(r.Pre))
		post.Append(int64(r.Post))
		preLabel.Append(r.PreLabel)
		postLabel.Append(r.PostLabel)
		weight.Append(r.Weight)
		mask.Append(r.Mask)
		elig.Append(r.Eligibility)
		frozen.Append(r.Frozen)
		above.Append(r.AboveSince)
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(SynapseSchema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("create arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close arrow writer: %w", err)
	}
	return nil
}

// ReadArrow reads every record batch of an Arrow IPC file written by WriteArrow.
func ReadArrow(r ipc.ReadAtSeeker) ([]SynapseRow, error) {
	mem := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("open arrow file: %w", err)
	}
	defer fr.Close()

	if !fr.Schema().Equal(SynapseSchema) {
		return nil, fmt.Errorf("unexpected arrow schema: %s", fr.Schema())
	}

	var rows []SynapseRow
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", i, err)
		}

		tick := rec.Column(0).(*array.Int64)
		index := rec.Column(1).(*array.Int64)
		pre := rec.Column(2).(*array.Int64)
		post := rec.Column(3).(*array.Int64)
		preLabel := rec.Column(4).(*array.String)
		postLabel := rec.Column(5).(*array.String)
		weight := rec.Column(6).(*array.Float64)
		mask := rec.Column(7).(*array.Uint32)
		elig := rec.Column(8).(*array.Float64)
		frozen := rec.Column(9).(*array.Boolean)
		above := rec.Column(10).(*array.Int64)

		for j := 0; j < int(rec.NumRows()); j++ {
			rows = append(rows, SynapseRow{
				Tick:        tick.Value(j),
				Index:       int(index.Value(j)),
				Pre:         int(pre.Value(j)),
				Post:        int(post.Value(j)),
				PreLabel:    preLabel.Value(j),
				PostLabel:   postLabel.Value(j),
				Weight:      weight.Value(j),
				Mask:        mask.Value(j),
				Eligibility: elig.Value(j),
				Frozen:      frozen.Value(j),
				AboveSince:  above.Value(j),
			})
		}
	}
	return rows, nil
}

package table

import (
	"fmt"
	"iter"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/compress"
	"github.com/arloliu/coltab/encoding"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/hash"
	"github.com/arloliu/coltab/internal/options"
	"github.com/arloliu/coltab/section"
)

// Header is the decoded table header, common to both layouts.
type Header struct {
	Layout       uint8
	RowCount     int
	ColumnCount  int
	MaxGroupRows int
	Compression  format.CompressionType
	Checksum     bool
	// Kinds holds the value kind of each column, stored in the default layout
	// and taken from WithSchema in the legacy one. An empty legacy table read
	// without a schema has no kinds, whatever ColumnCount says.
	Kinds []format.ValueKind
}

// RowGroup is one decoded row group.
type RowGroup struct {
	Index   int
	Rows    int
	Blocks  []section.BlockHeader
	Columns []column.Column
}

// Table is a fully decoded table.
type Table struct {
	RowCount int
	Kinds    []format.ValueKind
	Columns  []column.Column
}

// Column returns column i.
func (t Table) Column(i int) column.Column {
	return t.Columns[i]
}

// Decoder is the table reader. It validates the header on creation and decodes
// row groups on demand.
//
// The decoder never retains or modifies data beyond what it was given, and
// decoded columns never alias it.
type Decoder struct {
	data   []byte
	cfg    *Config
	header Header
	body   int
	codec  compress.Codec
}

// NewDecoder parses the table header in data.
//
// For the legacy layout pass WithLegacyLayout together with the writer's
// WithMaxRowGroupSize and, for float columns, WithSchema.
func NewDecoder(data []byte, opts ...Option) (*Decoder, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	d := &Decoder{data: data, cfg: cfg}

	var err error
	if cfg.legacy {
		err = d.parseLegacyHeader()
	} else {
		err = d.parseHeader()
	}
	if err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(d.header.Compression, "table")
	if err != nil {
		return nil, err
	}
	d.codec = codec

	return d, nil
}

func (d *Decoder) parseHeader() error {
	h, err := section.ParseTableHeader(d.data)
	if err != nil {
		return err
	}

	columns := int(h.ColumnCount)
	if len(d.data)-section.TableHeaderSize < columns {
		return fmt.Errorf("%w: %d column kinds, %d bytes left",
			errs.ErrTruncatedStream, columns, len(d.data)-section.TableHeaderSize)
	}

	kinds := make([]format.ValueKind, columns)
	for i := range kinds {
		kinds[i] = format.ValueKind(d.data[section.TableHeaderSize+i])
		if !kinds[i].IsValid() {
			return fmt.Errorf("%w: column %d has value kind %d", errs.ErrInvalidHeader, i, kinds[i])
		}
	}

	if len(d.cfg.schema) > 0 {
		if len(d.cfg.schema) != columns {
			return fmt.Errorf("%w: schema has %d columns, table has %d", errs.ErrInvalidColumnCount, len(d.cfg.schema), columns)
		}
		for i, kind := range d.cfg.schema {
			if kind != kinds[i] {
				return fmt.Errorf("%w: column %d stored as %s, schema says %s", errs.ErrMixedValueKinds, i, kinds[i], kind)
			}
		}
	}

	d.header = Header{
		Layout:       h.Flag.Layout,
		RowCount:     int(h.RowCount),
		ColumnCount:  columns,
		MaxGroupRows: int(h.MaxGroupRows),
		Compression:  h.Flag.Compression(),
		Checksum:     h.Flag.HasChecksum(),
		Kinds:        kinds,
	}
	d.body = section.TableHeaderSize + columns

	return nil
}

func (d *Decoder) parseLegacyHeader() error {
	h, err := section.ParseLegacyTableHeader(d.data)
	if err != nil {
		return err
	}

	columns := int(h.ColumnCount)
	body := len(d.data) - section.LegacyTableHeaderSize
	switch {
	case h.RowCount == 0 && body != 0:
		return fmt.Errorf("%w: %d bytes after empty table header", errs.ErrCorruptPayload, body)
	case h.RowCount > 0 && columns > body/section.BlockHeaderSize:
		// Each column costs at least one block header per group.
		return fmt.Errorf("%w: %d columns in %d bytes", errs.ErrTruncatedStream, columns, body)
	}

	kinds := d.cfg.schema
	switch {
	case len(kinds) == 0 && h.RowCount == 0:
		// Nothing bounds the column count of an empty legacy table, so its
		// columns are only materialized from a schema.
	case len(kinds) == 0:
		kinds = make([]format.ValueKind, columns)
		for i := range kinds {
			kinds[i] = format.ValueInt32
		}
	case len(kinds) != columns:
		return fmt.Errorf("%w: schema has %d columns, table has %d", errs.ErrInvalidColumnCount, len(kinds), columns)
	}

	d.header = Header{
		Layout:       section.LayoutLegacy,
		RowCount:     int(h.RowCount),
		ColumnCount:  columns,
		MaxGroupRows: d.cfg.maxGroupRows,
		Compression:  format.CompressionNone,
		Kinds:        kinds,
	}
	d.body = section.LegacyTableHeaderSize

	return nil
}

// Header returns the decoded table header.
func (d *Decoder) Header() Header {
	return d.header
}

// RowGroups iterates over the row groups in file order.
//
// Iteration stops after the first error, which is yielded with an empty
// RowGroup. Bytes left over after the last group are reported as
// ErrCorruptPayload.
func (d *Decoder) RowGroups() iter.Seq2[RowGroup, error] {
	return func(yield func(RowGroup, error) bool) {
		off, remaining := d.body, d.header.RowCount

		for index := 0; remaining > 0; index++ {
			group, next, err := d.decodeGroup(index, off, remaining)
			if err != nil {
				yield(RowGroup{}, fmt.Errorf("row group %d: %w", index, err))
				return
			}

			if !yield(group, nil) {
				return
			}

			off = next
			remaining -= group.Rows
		}

		if off != len(d.data) {
			yield(RowGroup{}, fmt.Errorf("%w: %d bytes after last row group", errs.ErrCorruptPayload, len(d.data)-off))
		}
	}
}

// Decode decodes every row group and concatenates the columns.
func (d *Decoder) Decode() (Table, error) {
	parts := make([][]column.Column, len(d.header.Kinds))
	for group, err := range d.RowGroups() {
		if err != nil {
			return Table{}, err
		}
		for i, col := range group.Columns {
			parts[i] = append(parts[i], col)
		}
	}

	cols := make([]column.Column, len(d.header.Kinds))
	for i := range cols {
		col, err := column.Concat(d.header.Kinds[i], parts[i]...)
		if err != nil {
			return Table{}, err
		}
		cols[i] = col
	}

	return Table{
		RowCount: d.header.RowCount,
		Kinds:    d.header.Kinds,
		Columns:  cols,
	}, nil
}

// groupLayout is the byte range of a row group, determined before any payload is decoded.
type groupLayout struct {
	rows     int
	blocks   []section.BlockHeader
	checksum uint64
	payloads [][]byte
	end      int
}

func (d *Decoder) decodeGroup(index, off, remaining int) (RowGroup, int, error) {
	layout, err := d.readGroupLayout(off, remaining)
	if err != nil {
		return RowGroup{}, 0, err
	}

	if d.header.Checksum {
		if sum := hash.Checksum(layout.payloads...); sum != layout.checksum {
			return RowGroup{}, 0, fmt.Errorf("%w: stored %016x, computed %016x", errs.ErrChecksumMismatch, layout.checksum, sum)
		}
	}

	cols, err := d.decodeColumns(layout)
	if err != nil {
		return RowGroup{}, 0, err
	}

	return RowGroup{
		Index:   index,
		Rows:    layout.rows,
		Blocks:  layout.blocks,
		Columns: cols,
	}, layout.end, nil
}

func (d *Decoder) readGroupLayout(off, remaining int) (groupLayout, error) {
	data := d.data
	expected := min(remaining, d.header.MaxGroupRows)
	layout := groupLayout{rows: expected}

	if d.header.Layout != section.LayoutLegacy {
		if len(data)-off < section.GroupHeaderSize {
			return groupLayout{}, fmt.Errorf("%w: group row count at offset %d", errs.ErrTruncatedStream, off)
		}

		rows := int(engine.Uint32(data[off:]))
		if rows == 0 || rows > expected {
			return groupLayout{}, fmt.Errorf("%w: group has %d rows, at most %d allowed", errs.ErrCorruptPayload, rows, expected)
		}
		layout.rows = rows
		off += section.GroupHeaderSize
	}

	columns := d.header.ColumnCount
	if (len(data)-off)/section.BlockHeaderSize < columns {
		return groupLayout{}, fmt.Errorf("%w: %d block headers at offset %d", errs.ErrTruncatedStream, columns, off)
	}

	layout.blocks = make([]section.BlockHeader, columns)
	var total uint64
	for i := range layout.blocks {
		if err := layout.blocks[i].Parse(data[off : off+section.BlockHeaderSize]); err != nil {
			return groupLayout{}, err
		}
		total += uint64(layout.blocks[i].Length)
		off += section.BlockHeaderSize
	}

	if d.header.Checksum {
		if len(data)-off < section.ChecksumSize {
			return groupLayout{}, fmt.Errorf("%w: checksum at offset %d", errs.ErrTruncatedStream, off)
		}
		layout.checksum = engine.Uint64(data[off:])
		off += section.ChecksumSize
	}

	if total > uint64(len(data)-off) {
		return groupLayout{}, fmt.Errorf("%w: payloads need %d bytes, %d left", errs.ErrTruncatedStream, total, len(data)-off)
	}

	layout.payloads = make([][]byte, columns)
	for i, b := range layout.blocks {
		end := off + int(b.Length)
		layout.payloads[i] = data[off:end:end]
		off = end
	}
	layout.end = off

	return layout, nil
}

func (d *Decoder) decodeColumns(layout groupLayout) ([]column.Column, error) {
	cols := make([]column.Column, len(layout.blocks))

	if d.cfg.concurrency <= 1 || len(cols) == 1 {
		for i := range cols {
			col, err := d.decodeBlock(i, layout)
			if err != nil {
				return nil, err
			}
			cols[i] = col
		}

		return cols, nil
	}

	var g errgroup.Group
	g.SetLimit(d.cfg.concurrency)
	for i := range cols {
		g.Go(func() error {
			col, err := d.decodeBlock(i, layout)
			if err != nil {
				return err
			}
			cols[i] = col

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return cols, nil
}

func (d *Decoder) decodeBlock(i int, layout groupLayout) (column.Column, error) {
	payload, err := d.codec.Decompress(layout.payloads[i])
	if err != nil {
		return column.Column{}, fmt.Errorf("%w: column %d: %s: %v", errs.ErrCorruptPayload, i, d.header.Compression, err)
	}

	col, err := encoding.Decode(layout.blocks[i].Kind, payload, layout.rows, d.header.Kinds[i])
	if err != nil {
		return column.Column{}, fmt.Errorf("column %d: %w", i, err)
	}

	return col, nil
}

// ReadFile reads and decodes the table stored at path.
func ReadFile(path string, opts ...Option) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, err
	}

	return ReadBytes(data, opts...)
}

// ReadBytes decodes a table held in memory.
func ReadBytes(data []byte, opts ...Option) (Table, error) {
	d, err := NewDecoder(data, opts...)
	if err != nil {
		return Table{}, err
	}

	return d.Decode()
}

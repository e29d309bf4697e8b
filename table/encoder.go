package table

import (
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/compress"
	"github.com/arloliu/coltab/encoding"
	"github.com/arloliu/coltab/endian"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/internal/fsutil"
	"github.com/arloliu/coltab/internal/hash"
	"github.com/arloliu/coltab/internal/options"
	"github.com/arloliu/coltab/internal/pool"
	"github.com/arloliu/coltab/section"
)

var engine = endian.GetLittleEndianEngine()

// Encoder is the row group writer. It partitions columns into row groups of at
// most the configured size, encodes every column of a group through the
// selection policy and writes each group as block headers followed by payloads.
//
// An Encoder holds only its configuration and may be reused, including from
// several goroutines writing to different destinations.
type Encoder struct {
	cfg      *Config
	selector *encoding.Selector
	codec    compress.Codec
}

// NewEncoder creates an Encoder.
//
// Returns ErrUnknownCompression or ErrInvalidHeader for compression or
// checksums combined with the legacy layout, and the option's own error for an
// invalid option value.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if err := cfg.validateEncoder(); err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(cfg.compression, "encoder")
	if err != nil {
		return nil, err
	}

	return &Encoder{
		cfg:      cfg,
		selector: encoding.NewSelector(),
		codec:    codec,
	}, nil
}

// storedBlock is one encoded column of a group together with the bytes that
// go to the file.
type storedBlock struct {
	block  encoding.Block
	stored []byte
}

// Encode writes a table of rowCount rows, pulling each group's values from sources.
//
// Codec refusals never surface here: the column is written as Direct and
// counted in Stats.Fallbacks. Errors come from invalid input (no sources, a
// preferred kind list of the wrong length, a source returning the wrong length
// or kind), from a source itself, or from w.
func (e *Encoder) Encode(w io.Writer, rowCount int, sources []ColumnSource) (Stats, error) {
	if len(sources) == 0 {
		return Stats{}, fmt.Errorf("%w: table needs at least one column", errs.ErrInvalidColumnCount)
	}

	if len(e.cfg.preferred) > 0 && len(e.cfg.preferred) != len(sources) {
		return Stats{}, fmt.Errorf("%w: %d preferred kinds for %d columns",
			errs.ErrInvalidColumnCount, len(e.cfg.preferred), len(sources))
	}

	if rowCount < 0 || uint64(rowCount) > section.MaxCount {
		return Stats{}, fmt.Errorf("%w: %d", errs.ErrInvalidRowCount, rowCount)
	}

	for i, src := range sources {
		if !src.Kind().IsValid() {
			return Stats{}, fmt.Errorf("%w: column %d has no value kind", errs.ErrMixedValueKinds, i)
		}
	}

	stats := newStats(rowCount, len(sources), e.cfg.compression)
	cw := &countingWriter{w: w}

	if _, err := cw.Write(e.tableHeader(rowCount, sources)); err != nil {
		return stats, fmt.Errorf("write table header: %w", err)
	}

	cols := make([]column.Column, len(sources))
	for group, start := 0, 0; start < rowCount; group++ {
		n := min(e.cfg.maxGroupRows, rowCount-start)

		for i, src := range sources {
			col, err := src.Next(n)
			if err != nil {
				return stats, fmt.Errorf("row group %d column %d: %w", group, i, err)
			}

			if col.Len() != n {
				return stats, fmt.Errorf("%w: row group %d column %d has %d rows, want %d",
					errs.ErrColumnLengthMismatch, group, i, col.Len(), n)
			}

			if col.Kind() != src.Kind() {
				return stats, fmt.Errorf("%w: row group %d column %d is %s, source declares %s",
					errs.ErrMixedValueKinds, group, i, col.Kind(), src.Kind())
			}
			cols[i] = col
		}

		blocks, err := e.encodeGroup(cols)
		if err != nil {
			return stats, fmt.Errorf("row group %d: %w", group, err)
		}

		if err := e.writeGroup(cw, n, blocks); err != nil {
			return stats, fmt.Errorf("write row group %d: %w", group, err)
		}

		for _, b := range blocks {
			stats.addBlock(b.block, len(b.stored))
		}
		stats.Groups++
		stats.BytesWritten = cw.n
		start += n
	}
	stats.BytesWritten = cw.n

	return stats, nil
}

// EncodeColumns writes whole in-memory columns, which must all have the same length.
func (e *Encoder) EncodeColumns(w io.Writer, cols []column.Column) (Stats, error) {
	if len(cols) == 0 {
		return Stats{}, fmt.Errorf("%w: table needs at least one column", errs.ErrInvalidColumnCount)
	}

	rows := cols[0].Len()
	sources := make([]ColumnSource, len(cols))
	for i, col := range cols {
		if col.Len() != rows {
			return Stats{}, fmt.Errorf("%w: column %d has %d rows, column 0 has %d",
				errs.ErrColumnLengthMismatch, i, col.Len(), rows)
		}
		sources[i] = NewSliceSource(col)
	}

	return e.Encode(w, rows, sources)
}

// WriteFile encodes a table into path. The file only appears once the whole
// table has been written; on error no file is left at path.
func (e *Encoder) WriteFile(path string, rowCount int, sources []ColumnSource) (Stats, error) {
	var stats Stats
	err := fsutil.WriteFileAtomic(path, func(w io.Writer) error {
		var err error
		stats, err = e.Encode(w, rowCount, sources)

		return err
	})

	return stats, err
}

func (e *Encoder) tableHeader(rowCount int, sources []ColumnSource) []byte {
	if e.cfg.legacy {
		return section.LegacyTableHeader{
			RowCount:    uint32(rowCount),     //nolint: gosec
			ColumnCount: uint32(len(sources)), //nolint: gosec
		}.Bytes()
	}

	h := section.NewTableHeader(uint32(rowCount), uint32(len(sources)), uint32(e.cfg.maxGroupRows)) //nolint: gosec
	h.Flag.SetChecksum(e.cfg.checksum)
	h.Flag.SetCompression(e.cfg.compression)

	out := h.Bytes()
	for _, src := range sources {
		out = append(out, byte(src.Kind()))
	}

	return out
}

// encodeGroup encodes the columns of one group, in parallel when configured.
// Results are collected by column index so the output never depends on
// scheduling.
func (e *Encoder) encodeGroup(cols []column.Column) ([]storedBlock, error) {
	blocks := make([]storedBlock, len(cols))

	if e.cfg.concurrency <= 1 || len(cols) == 1 {
		for i, col := range cols {
			b, err := e.encodeBlock(i, col)
			if err != nil {
				return nil, err
			}
			blocks[i] = b
		}

		return blocks, nil
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.concurrency)
	for i, col := range cols {
		g.Go(func() error {
			b, err := e.encodeBlock(i, col)
			if err != nil {
				return err
			}
			blocks[i] = b

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return blocks, nil
}

func (e *Encoder) encodeBlock(i int, col column.Column) (storedBlock, error) {
	var (
		block encoding.Block
		err   error
	)
	if len(e.cfg.adaptive) > 0 {
		block, err = e.selector.EncodeSmallest(col, e.cfg.adaptive...)
	} else {
		block, err = e.selector.Encode(col, e.cfg.preferredKind(i))
	}
	if err != nil {
		return storedBlock{}, fmt.Errorf("column %d: %w", i, err)
	}

	stored, err := e.codec.Compress(block.Payload)
	if err != nil {
		return storedBlock{}, fmt.Errorf("column %d: %s compression: %w", i, e.cfg.compression, err)
	}

	if uint64(len(stored)) > section.MaxCount {
		return storedBlock{}, fmt.Errorf("%w: column %d block is %d bytes", errs.ErrInputTooLarge, i, len(stored))
	}

	return storedBlock{block: block, stored: stored}, nil
}

// writeGroup assembles a group in a pooled buffer and writes it with one call:
// [groupRows], block headers, [checksum], payloads.
func (e *Encoder) writeGroup(w io.Writer, rows int, blocks []storedBlock) error {
	buf := pool.GetGroupBuffer()
	defer pool.PutGroupBuffer(buf)

	if !e.cfg.legacy {
		buf.B = engine.AppendUint32(buf.B, uint32(rows)) //nolint: gosec
	}

	for _, b := range blocks {
		buf.B = section.NewBlockHeader(b.block.Kind, len(b.stored)).AppendTo(buf.B)
	}

	if e.cfg.checksum {
		buf.B = engine.AppendUint64(buf.B, hash.Checksum(storedPayloads(blocks)...))
	}

	for _, b := range blocks {
		_, _ = buf.Write(b.stored)
	}

	_, err := buf.WriteTo(w)

	return err
}

func storedPayloads(blocks []storedBlock) [][]byte {
	parts := make([][]byte, len(blocks))
	for i, b := range blocks {
		parts[i] = b.stored
	}

	return parts
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

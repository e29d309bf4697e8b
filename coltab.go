// Package coltab provides a compact columnar table format for int32 and float32
// columns, together with the per-column codecs it is built from.
//
// A table is split into row groups. Every column of every group is stored as
// one block in the representation that suits its values: Direct, RunLength,
// DictionaryOneByte, DeltaSignedByte, Constant or BitPacked. When a preferred
// representation cannot encode a block the writer falls back to Direct, so a
// table can always be written.
//
// # Core Features
//
//   - Six lossless column representations with automatic Direct fallback
//   - Adaptive selection keeping the smallest representation per block
//   - Optional payload compression (None, Zstd, S2, LZ4, Snappy)
//   - Optional xxHash64 row group checksums
//   - The original headerless layout for reading and writing older files
//   - A single-block container for whole-file encoding
//
// # Basic Usage
//
// Writing and reading a table:
//
//	import "github.com/arloliu/coltab"
//
//	cols := []column.Column{
//	    column.FromInt32s([]int32{1, 2, 3, 4}),
//	    column.FromFloat32s([]float32{9.5, 9.5, 9.5, 9.5}),
//	}
//
//	encoder, _ := coltab.NewDefaultTableEncoder()
//	var buf bytes.Buffer
//	stats, _ := encoder.EncodeColumns(&buf, cols)
//	fmt.Printf("%.2f bytes per row\n", stats.BytesPerRow())
//
//	tbl, _ := coltab.ReadTable(buf.Bytes())
//	fmt.Println(tbl.Column(1).At(0))
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the table and
// container packages for the most common use cases. For fine-grained control
// use those packages, and the encoding package for single columns, directly.
package coltab

import (
	"github.com/arloliu/coltab/container"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/table"
)

var defaultTableOptions = []table.Option{
	table.WithMaxRowGroupSize(table.DefaultMaxRowGroupSize),
	table.WithAdaptiveSelection(),
	table.WithCompression(format.CompressionNone),
	table.WithChecksum(true),
}

// NewTableEncoder creates a table encoder with custom options.
//
// Parameters:
//   - opts: Optional configuration functions (see table.Option)
//
// Returns:
//   - *table.Encoder: The created encoder.
//   - error: An error if the configuration is invalid.
//
// Available options:
//   - table.WithMaxRowGroupSize(rows)
//   - table.WithPreferredKinds(kinds...) / table.WithAdaptiveSelection(candidates...)
//   - table.WithCompression(format.CompressionNone|Zstd|S2|LZ4|Snappy)
//   - table.WithChecksum(true|false)
//   - table.WithLegacyLayout()
//   - table.WithConcurrency(n)
//
// Example:
//
//	encoder, err := coltab.NewTableEncoder(
//	    table.WithPreferredKinds(format.KindDeltaSignedByte, format.KindDictionaryOneByte),
//	    table.WithCompression(format.CompressionZstd),
//	)
func NewTableEncoder(opts ...table.Option) (*table.Encoder, error) {
	return table.NewEncoder(opts...)
}

// NewDefaultTableEncoder creates a table encoder with recommended settings:
// groups of table.DefaultMaxRowGroupSize rows, adaptive selection over every
// representation, no compression and row group checksums.
func NewDefaultTableEncoder() (*table.Encoder, error) {
	return table.NewEncoder(defaultTableOptions...)
}

// NewLegacyTableEncoder creates an encoder for the original headerless layout.
//
// Legacy files store neither group sizes nor column kinds, so readers must be
// given the same groupRows, and a schema for float columns.
func NewLegacyTableEncoder(groupRows int, kinds ...format.RepresentationKind) (*table.Encoder, error) {
	opts := []table.Option{table.WithLegacyLayout(), table.WithMaxRowGroupSize(groupRows)}
	if len(kinds) > 0 {
		opts = append(opts, table.WithPreferredKinds(kinds...))
	}

	return table.NewEncoder(opts...)
}

// NewTableDecoder creates a decoder over an encoded table.
func NewTableDecoder(data []byte, opts ...table.Option) (*table.Decoder, error) {
	return table.NewDecoder(data, opts...)
}

// ReadTable decodes a whole table in the default layout.
func ReadTable(data []byte) (table.Table, error) {
	return table.ReadBytes(data)
}

// EncodeContainer encodes data as a single-block container with the named
// method: "constant", "rle", "rle8", "bit" or "auto" for the smallest.
func EncodeContainer(data []byte, method string) ([]byte, error) {
	if method == "auto" {
		out, _, err := container.EncodeAuto(data)
		return out, err
	}

	typ, err := format.ParseContainerType(method)
	if err != nil {
		return nil, err
	}

	return container.Encode(data, typ)
}

// DecodeContainer restores the bytes of a single-block container.
func DecodeContainer(data []byte) ([]byte, error) {
	return container.Decode(data)
}

package section

import (
	"fmt"

	"github.com/arloliu/coltab/endian"
	"github.com/arloliu/coltab/errs"
)

var engine = endian.GetLittleEndianEngine()

// TableHeader is the fixed-size header at the start of a row-grouped table.
//
// It is followed by ColumnCount value kind bytes and then the row groups.
type TableHeader struct {
	// Flag is a packed field for options, magic number, layout and compression.
	Flag TableFlag // byte offset 0-3
	// RowCount is the total number of rows in the table.
	RowCount uint32 // byte offset 4-7
	// ColumnCount is the number of columns, at least 1.
	ColumnCount uint32 // byte offset 8-11
	// MaxGroupRows is the row group size the writer used. Every group except
	// the last holds exactly this many rows.
	MaxGroupRows uint32 // byte offset 12-15
}

// NewTableHeader creates a TableHeader with a default flag.
func NewTableHeader(rowCount, columnCount, maxGroupRows uint32) TableHeader {
	return TableHeader{
		Flag:         NewTableFlag(),
		RowCount:     rowCount,
		ColumnCount:  columnCount,
		MaxGroupRows: maxGroupRows,
	}
}

// Parse parses the header from a byte slice of exactly TableHeaderSize bytes.
func (h *TableHeader) Parse(data []byte) error {
	if len(data) != TableHeaderSize {
		return fmt.Errorf("%w: table header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), TableHeaderSize)
	}

	h.Flag.Options = engine.Uint16(data[0:2])
	h.Flag.Layout = data[2]
	h.Flag.CompressionType = data[3]
	h.RowCount = engine.Uint32(data[4:8])
	h.ColumnCount = engine.Uint32(data[8:12])
	h.MaxGroupRows = engine.Uint32(data[12:16])

	return h.Validate()
}

// Validate checks the flag and the counts.
func (h TableHeader) Validate() error {
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	if h.ColumnCount == 0 {
		return fmt.Errorf("%w: zero columns", errs.ErrInvalidHeader)
	}

	if h.MaxGroupRows == 0 {
		return fmt.Errorf("%w: zero row group size", errs.ErrInvalidHeader)
	}

	return nil
}

// Bytes serializes the TableHeader into a byte slice.
func (h TableHeader) Bytes() []byte {
	b := make([]byte, TableHeaderSize)

	engine.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.Layout
	b[3] = h.Flag.CompressionType
	engine.PutUint32(b[4:8], h.RowCount)
	engine.PutUint32(b[8:12], h.ColumnCount)
	engine.PutUint32(b[12:16], h.MaxGroupRows)

	return b
}

// GroupCount returns the number of row groups the header implies.
func (h TableHeader) GroupCount() int {
	return GroupCount(h.RowCount, h.MaxGroupRows)
}

// ParseTableHeader parses a TableHeader from the beginning of data.
func ParseTableHeader(data []byte) (TableHeader, error) {
	if len(data) < TableHeaderSize {
		return TableHeader{}, fmt.Errorf("%w: table header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), TableHeaderSize)
	}

	h := TableHeader{}
	if err := h.Parse(data[:TableHeaderSize]); err != nil {
		return TableHeader{}, err
	}

	return h, nil
}

// LegacyTableHeader is the header of the legacy layout: rowCount then columnCount.
//
// The legacy layout stores neither the row group size nor the column value
// kinds, so a reader must be told both.
type LegacyTableHeader struct {
	RowCount    uint32 // byte offset 0-3
	ColumnCount uint32 // byte offset 4-7
}

// Parse parses the header from a byte slice of exactly LegacyTableHeaderSize bytes.
func (h *LegacyTableHeader) Parse(data []byte) error {
	if len(data) != LegacyTableHeaderSize {
		return fmt.Errorf("%w: legacy header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), LegacyTableHeaderSize)
	}

	h.RowCount = engine.Uint32(data[0:4])
	h.ColumnCount = engine.Uint32(data[4:8])

	if h.ColumnCount == 0 {
		return fmt.Errorf("%w: zero columns", errs.ErrInvalidHeader)
	}

	return nil
}

// Bytes serializes the LegacyTableHeader into a byte slice.
func (h LegacyTableHeader) Bytes() []byte {
	b := make([]byte, LegacyTableHeaderSize)
	engine.PutUint32(b[0:4], h.RowCount)
	engine.PutUint32(b[4:8], h.ColumnCount)

	return b
}

// ParseLegacyTableHeader parses a LegacyTableHeader from the beginning of data.
func ParseLegacyTableHeader(data []byte) (LegacyTableHeader, error) {
	if len(data) < LegacyTableHeaderSize {
		return LegacyTableHeader{}, fmt.Errorf("%w: legacy header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), LegacyTableHeaderSize)
	}

	h := LegacyTableHeader{}
	if err := h.Parse(data[:LegacyTableHeaderSize]); err != nil {
		return LegacyTableHeader{}, err
	}

	return h, nil
}

// GroupCount returns how many groups of at most maxGroupRows cover rowCount rows.
func GroupCount(rowCount, maxGroupRows uint32) int {
	if maxGroupRows == 0 {
		return 0
	}

	return int((uint64(rowCount) + uint64(maxGroupRows) - 1) / uint64(maxGroupRows))
}

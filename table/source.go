package table

import (
	"fmt"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// ColumnSource supplies the values of one column, a row group at a time.
//
// Next is called once per row group with the group's row count and must return
// a column of exactly n values of kind Kind(). Sources need not be safe for
// concurrent use; the encoder calls them from a single goroutine.
type ColumnSource interface {
	Kind() format.ValueKind
	Next(n int) (column.Column, error)
}

// SliceSource serves an in-memory column in consecutive slices.
type SliceSource struct {
	col column.Column
	off int
}

var _ ColumnSource = (*SliceSource)(nil)

// NewSliceSource creates a source that yields col from its first row on.
func NewSliceSource(col column.Column) *SliceSource {
	return &SliceSource{col: col}
}

// Kind returns the value kind of the underlying column.
func (s *SliceSource) Kind() format.ValueKind {
	return s.col.Kind()
}

// Next returns the next n values. The result shares storage with the column.
func (s *SliceSource) Next(n int) (column.Column, error) {
	if n < 0 || s.off+n > s.col.Len() {
		return column.Column{}, fmt.Errorf("%w: %d rows requested at row %d of %d",
			errs.ErrColumnLengthMismatch, n, s.off, s.col.Len())
	}

	out := s.col.Slice(s.off, s.off+n)
	s.off += n

	return out, nil
}

// Remaining returns how many rows have not been served yet.
func (s *SliceSource) Remaining() int {
	return s.col.Len() - s.off
}

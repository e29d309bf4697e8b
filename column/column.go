// Package column defines the value model shared by every coltab codec: a Value
// tagged as Int32 or Float32, and a homogeneous, immutable Column of values.
//
// Internally a column stores the 32-bit pattern of each value (the two's
// complement bits of an int32 or the IEEE-754 bits of a float32) next to a
// single value kind. The kind is checked once when the column is built, so
// codecs never re-inspect individual elements, and float values compare by bit
// pattern: -0 and +0 are different values and NaN payloads survive a round trip.
package column

import (
	"fmt"
	"math"

	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// Value is a single Int32 or Float32 value.
type Value struct {
	kind format.ValueKind
	bits uint32
}

// Int32 returns an Int32 value.
func Int32(v int32) Value {
	return Value{kind: format.ValueInt32, bits: uint32(v)} //nolint: gosec
}

// Float32 returns a Float32 value.
func Float32(v float32) Value {
	return Value{kind: format.ValueFloat32, bits: math.Float32bits(v)}
}

// Kind returns the value's tag.
func (v Value) Kind() format.ValueKind { return v.kind }

// Bits returns the 32-bit pattern stored for the value.
func (v Value) Bits() uint32 { return v.bits }

// Int32 returns the value as an int32. For a Float32 value it reinterprets the bits.
func (v Value) Int32() int32 { return int32(v.bits) } //nolint: gosec

// Float32 returns the value as a float32. For an Int32 value it reinterprets the bits.
func (v Value) Float32() float32 { return math.Float32frombits(v.bits) }

func (v Value) String() string {
	if v.kind == format.ValueFloat32 {
		return fmt.Sprintf("%g", v.Float32())
	}

	return fmt.Sprintf("%d", v.Int32())
}

// Column is an immutable, homogeneous sequence of values.
//
// The zero Column is an empty Int32 column.
type Column struct {
	kind  format.ValueKind
	words []uint32
}

// FromInt32s builds an Int32 column. The input slice is copied.
func FromInt32s(values []int32) Column {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = uint32(v) //nolint: gosec
	}

	return Column{kind: format.ValueInt32, words: words}
}

// FromFloat32s builds a Float32 column. The input slice is copied.
func FromFloat32s(values []float32) Column {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = math.Float32bits(v)
	}

	return Column{kind: format.ValueFloat32, words: words}
}

// FromValues builds a column from tagged values.
//
// An empty input produces an empty column of the fallback kind. Values with
// differing tags fail with ErrMixedValueKinds.
func FromValues(fallback format.ValueKind, values []Value) (Column, error) {
	if len(values) == 0 {
		return Empty(fallback), nil
	}

	kind := values[0].kind
	if !kind.IsValid() {
		return Column{}, fmt.Errorf("%w: value 0 has no kind", errs.ErrMixedValueKinds)
	}

	words := make([]uint32, len(values))
	for i, v := range values {
		if v.kind != kind {
			return Column{}, fmt.Errorf("%w: value %d is %s, column is %s", errs.ErrMixedValueKinds, i, v.kind, kind)
		}
		words[i] = v.bits
	}

	return Column{kind: kind, words: words}, nil
}

// FromWords builds a column of the given kind that takes ownership of words.
// Codecs use it to hand decoded buffers to the caller without copying.
func FromWords(kind format.ValueKind, words []uint32) Column {
	return Column{kind: kind, words: words}
}

// Empty returns an empty column of the given kind.
func Empty(kind format.ValueKind) Column {
	return Column{kind: kind}
}

// Kind returns the value kind shared by every element.
func (c Column) Kind() format.ValueKind {
	if c.kind == 0 {
		return format.ValueInt32
	}

	return c.kind
}

// Len returns the number of values.
func (c Column) Len() int { return len(c.words) }

// Words returns the 32-bit patterns of the values. The slice must not be modified.
func (c Column) Words() []uint32 { return c.words }

// At returns the value at index i. Panics if i is out of range.
func (c Column) At(i int) Value {
	return Value{kind: c.Kind(), bits: c.words[i]}
}

// Values returns a copy of the column as tagged values.
func (c Column) Values() []Value {
	kind := c.Kind()
	out := make([]Value, len(c.words))
	for i, w := range c.words {
		out[i] = Value{kind: kind, bits: w}
	}

	return out
}

// Int32s returns the values as int32. Float32 bit patterns are reinterpreted.
func (c Column) Int32s() []int32 {
	out := make([]int32, len(c.words))
	for i, w := range c.words {
		out[i] = int32(w) //nolint: gosec
	}

	return out
}

// Float32s returns the values as float32. Int32 bit patterns are reinterpreted.
func (c Column) Float32s() []float32 {
	out := make([]float32, len(c.words))
	for i, w := range c.words {
		out[i] = math.Float32frombits(w)
	}

	return out
}

// Slice returns the sub-column [lo, hi). It shares storage with c.
func (c Column) Slice(lo, hi int) Column {
	return Column{kind: c.kind, words: c.words[lo:hi:hi]}
}

// Equal reports whether both columns have the same kind and bit-identical values.
func (c Column) Equal(other Column) bool {
	if c.Kind() != other.Kind() || len(c.words) != len(other.words) {
		return false
	}
	for i := range c.words {
		if c.words[i] != other.words[i] {
			return false
		}
	}

	return true
}

// Concat joins columns of the same kind into a new column.
func Concat(kind format.ValueKind, cols ...Column) (Column, error) {
	total := 0
	for i, c := range cols {
		if c.Len() > 0 && c.Kind() != kind {
			return Column{}, fmt.Errorf("%w: column %d is %s, want %s", errs.ErrMixedValueKinds, i, c.Kind(), kind)
		}
		total += c.Len()
	}

	words := make([]uint32, 0, total)
	for _, c := range cols {
		words = append(words, c.words...)
	}

	return Column{kind: kind, words: words}, nil
}

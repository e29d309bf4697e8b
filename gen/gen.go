// Package gen produces the synthetic users and purchases tables used by the
// bytes-per-row benchmark.
//
// Every table draws from a single seeded PCG stream, and the table encoder pulls
// columns in order within each row group, so a given seed always produces the
// same file.
package gen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/table"
)

// Column value ranges of the synthetic tables.
const (
	ActiveProbability = 0.99
	MaxItemID         = 1 << 30
	MaxPrice          = 10.0
)

// IDGenerator hands out consecutive ids.
type IDGenerator struct {
	next int32
}

// NewIDGenerator creates a generator whose first id is start.
func NewIDGenerator(start int32) *IDGenerator {
	return &IDGenerator{next: start}
}

// Next returns the next id.
func (g *IDGenerator) Next() int32 {
	id := g.next
	g.next++

	return id
}

// Source is a table.ColumnSource that draws every value from a generator function.
type Source struct {
	name string
	kind format.ValueKind
	next func() uint32
}

var _ table.ColumnSource = (*Source)(nil)

// NewInt32Source creates a source of int32 values.
func NewInt32Source(name string, next func() int32) *Source {
	return &Source{name: name, kind: format.ValueInt32, next: func() uint32 { return uint32(next()) }} //nolint: gosec
}

// NewFloat32Source creates a source of float32 values.
func NewFloat32Source(name string, next func() float32) *Source {
	return &Source{name: name, kind: format.ValueFloat32, next: func() uint32 { return math.Float32bits(next()) }}
}

// Name returns the column name.
func (s *Source) Name() string { return s.name }

// Kind returns the value kind of the generated column.
func (s *Source) Kind() format.ValueKind { return s.kind }

// Next generates the next n values.
func (s *Source) Next(n int) (column.Column, error) {
	if n < 0 {
		return column.Column{}, fmt.Errorf("%w: %d rows requested", errs.ErrColumnLengthMismatch, n)
	}

	words := make([]uint32, n)
	for i := range words {
		words[i] = s.next()
	}

	return column.FromWords(s.kind, words), nil
}

// Table is a named set of generated columns with the representations that suit them.
type Table struct {
	Name      string
	Columns   []*Source
	Preferred []format.RepresentationKind
}

// Sources returns the columns as table sources, in column order.
func (t Table) Sources() []table.ColumnSource {
	sources := make([]table.ColumnSource, len(t.Columns))
	for i, c := range t.Columns {
		sources[i] = c
	}

	return sources
}

// ColumnNames returns the column names in column order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name()
	}

	return names
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint: gosec
}

// Users returns the users table: a sequential id from 0, an is_active flag that
// is 1 with probability 0.99 and a gender code of 1 or 2 (49% each) or 3.
func Users(seed uint64) Table {
	rng := newRand(seed)
	ids := NewIDGenerator(0)

	return Table{
		Name: "users",
		Columns: []*Source{
			NewInt32Source("id", ids.Next),
			NewInt32Source("is_active", func() int32 {
				if rng.Float64() < ActiveProbability {
					return 1
				}

				return 0
			}),
			NewInt32Source("gender", func() int32 {
				switch r := rng.Float64(); {
				case r < 0.49:
					return 1
				case r < 0.98:
					return 2
				default:
					return 3
				}
			}),
		},
		Preferred: []format.RepresentationKind{
			format.KindDeltaSignedByte,
			format.KindRunLength,
			format.KindDictionaryOneByte,
		},
	}
}

// Purchases returns the purchases table: a user id uniform over [0, numUsers),
// an item id uniform over [0, MaxItemID] and a price uniform over [0, MaxPrice).
func Purchases(numUsers int, seed uint64) (Table, error) {
	if numUsers < 1 || numUsers > math.MaxInt32 {
		return Table{}, fmt.Errorf("%w: purchases need at least one user, got %d", errs.ErrInvalidRowCount, numUsers)
	}

	rng := newRand(seed)

	return Table{
		Name: "purchases",
		Columns: []*Source{
			NewInt32Source("user_id", func() int32 { return rng.Int32N(int32(numUsers)) }), //nolint: gosec
			NewInt32Source("item_id", func() int32 { return rng.Int32N(MaxItemID + 1) }),
			NewFloat32Source("price", func() float32 { return float32(MaxPrice * rng.Float64()) }),
		},
		Preferred: []format.RepresentationKind{
			format.KindDictionaryOneByte,
			format.KindDirect,
			format.KindDirect,
		},
	}, nil
}

package encoding

import (
	"fmt"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// ConstantCodec stores a column whose values are all identical as that single
// value at 4 bytes; the row count comes from the surrounding header.
type ConstantCodec struct{}

var _ Codec = ConstantCodec{}

func (ConstantCodec) Kind() format.RepresentationKind { return format.KindConstant }

func (ConstantCodec) Encode(col column.Column) ([]byte, error) {
	words := col.Words()
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty column", errs.ErrNotConstant)
	}

	first := words[0]
	for i, w := range words {
		if w != first {
			return nil, fmt.Errorf("%w: row %d differs from row 0", errs.ErrNotConstant, i)
		}
	}

	return engine.AppendUint32(make([]byte, 0, 4), first), nil
}

func (ConstantCodec) Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error) {
	if err := checkLength(format.KindConstant, len(payload), 4); err != nil {
		return column.Column{}, err
	}

	v := engine.Uint32(payload)
	words := make([]uint32, count)
	for i := range words {
		words[i] = v
	}

	return column.FromWords(kind, words), nil
}

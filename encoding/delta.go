package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// DeltaCodec stores the first value of an Int32 column at 4 bytes and every
// following value as its signed-byte difference from the previous one.
//
// Differences are computed in int64, so a step across the int32 range reports
// ErrDeltaOverflow instead of wrapping.
type DeltaCodec struct{}

var _ Codec = DeltaCodec{}

func (DeltaCodec) Kind() format.RepresentationKind { return format.KindDeltaSignedByte }

func (DeltaCodec) Encode(col column.Column) ([]byte, error) {
	if col.Kind() != format.ValueInt32 {
		return nil, fmt.Errorf("%w: delta requires int32, got %s", errs.ErrUnsupportedType, col.Kind())
	}

	words := col.Words()
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: delta requires at least one value", errs.ErrUnsupportedType)
	}

	out := make([]byte, 4, 4+len(words)-1)
	engine.PutUint32(out, words[0])

	prev := int64(int32(words[0])) //nolint: gosec
	for i := 1; i < len(words); i++ {
		cur := int64(int32(words[i])) //nolint: gosec
		diff := cur - prev
		if diff < math.MinInt8 || diff > math.MaxInt8 {
			return nil, fmt.Errorf("%w: difference %d at row %d", errs.ErrDeltaOverflow, diff, i)
		}
		out = append(out, byte(int8(diff)))
		prev = cur
	}

	return out, nil
}

func (DeltaCodec) Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error) {
	if kind != format.ValueInt32 {
		return column.Column{}, fmt.Errorf("%w: delta payload for %s column", errs.ErrUnsupportedType, kind)
	}

	if count == 0 {
		if err := checkLength(format.KindDeltaSignedByte, len(payload), 0); err != nil {
			return column.Column{}, err
		}

		return column.Empty(kind), nil
	}

	if err := checkLength(format.KindDeltaSignedByte, len(payload), 4+count-1); err != nil {
		return column.Column{}, err
	}

	words := make([]uint32, count)
	cur := int32(engine.Uint32(payload)) //nolint: gosec
	words[0] = uint32(cur)               //nolint: gosec
	for i, b := range payload[4:] {
		cur += int32(int8(b))
		words[i+1] = uint32(cur) //nolint: gosec
	}

	return column.FromWords(kind, words), nil
}

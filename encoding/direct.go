package encoding

import (
	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/format"
)

// DirectCodec stores each value as its 4-byte little-endian bit pattern.
//
// It accepts every column, including an empty one, which makes it the
// terminal fallback of the selection policy.
type DirectCodec struct{}

var _ Codec = DirectCodec{}

func (DirectCodec) Kind() format.RepresentationKind { return format.KindDirect }

// Encode returns 4*col.Len() bytes. It never fails.
func (DirectCodec) Encode(col column.Column) ([]byte, error) {
	words := col.Words()
	out := make([]byte, len(words)*4)
	for i, w := range words {
		engine.PutUint32(out[i*4:], w)
	}

	return out, nil
}

func (DirectCodec) Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error) {
	if err := checkLength(format.KindDirect, len(payload), count*4); err != nil {
		return column.Column{}, err
	}

	words := make([]uint32, count)
	for i := range words {
		words[i] = engine.Uint32(payload[i*4:])
	}

	return column.FromWords(kind, words), nil
}

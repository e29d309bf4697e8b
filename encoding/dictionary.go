package encoding

import (
	"fmt"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/pool"
)

// MaxDictionarySize is the number of distinct values a one-byte index can address.
const MaxDictionarySize = 256

// DictionaryCodec stores the distinct values of a column once, followed by one
// index byte per value.
//
// Payload layout: dictSize u32, dictSize values at 4 bytes, then one index byte
// per row. Dictionary entries are kept in first-occurrence order so the same
// column always produces the same bytes.
type DictionaryCodec struct{}

var _ Codec = DictionaryCodec{}

func (DictionaryCodec) Kind() format.RepresentationKind { return format.KindDictionaryOneByte }

func (DictionaryCodec) Encode(col column.Column) ([]byte, error) {
	words := col.Words()

	dict := make([]uint32, 0, min(len(words), MaxDictionarySize))
	index := make(map[uint32]byte, cap(dict))
	indexes := make([]byte, len(words))

	for i, w := range words {
		idx, ok := index[w]
		if !ok {
			if len(dict) == MaxDictionarySize {
				return nil, fmt.Errorf("%w: value %d at row %d", errs.ErrDictionaryOverflow, len(dict)+1, i)
			}
			idx = byte(len(dict))
			index[w] = idx
			dict = append(dict, w)
		}
		indexes[i] = idx
	}

	return encodeWith(func(buf *pool.ByteBuffer) error {
		buf.Grow(4 + len(dict)*4 + len(indexes))
		buf.B = engine.AppendUint32(buf.B, uint32(len(dict))) //nolint: gosec
		for _, w := range dict {
			buf.B = engine.AppendUint32(buf.B, w)
		}
		_, _ = buf.Write(indexes)

		return nil
	})
}

func (DictionaryCodec) Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error) {
	if len(payload) < 4 {
		return column.Column{}, fmt.Errorf("%w: dictionary size missing", errs.ErrTruncatedStream)
	}

	size := int(engine.Uint32(payload))
	if size > MaxDictionarySize {
		return column.Column{}, fmt.Errorf("%w: dictionary size %d", errs.ErrCorruptPayload, size)
	}

	if err := checkLength(format.KindDictionaryOneByte, len(payload), 4+size*4+count); err != nil {
		return column.Column{}, err
	}

	dict := make([]uint32, size)
	for i := range dict {
		dict[i] = engine.Uint32(payload[4+i*4:])
	}

	indexes := payload[4+size*4:]
	words := make([]uint32, count)
	for i, idx := range indexes {
		if int(idx) >= size {
			return column.Column{}, fmt.Errorf("%w: index %d outside dictionary of %d", errs.ErrCorruptPayload, idx, size)
		}
		words[i] = dict[idx]
	}

	return column.FromWords(kind, words), nil
}

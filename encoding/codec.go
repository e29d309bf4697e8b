package encoding

import (
	"fmt"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/endian"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/pool"
)

// Codec is one representation scheme for a column of 4-byte values.
//
// Encode and Decode are pure: they keep no state between calls, so a single
// Codec value may be shared by any number of goroutines.
type Codec interface {
	// Kind returns the representation discriminant written next to the payload.
	Kind() format.RepresentationKind

	// Encode returns the payload for col.
	//
	// The returned slice is newly allocated and owned by the caller. Codecs that
	// cannot represent col return one of errs.ErrDictionaryOverflow,
	// errs.ErrDeltaOverflow, errs.ErrUnsupportedType or errs.ErrNotConstant.
	Encode(col column.Column) ([]byte, error)

	// Decode rebuilds exactly count values of the given kind from payload.
	//
	// Returns errs.ErrTruncatedStream when payload ends early and
	// errs.ErrCorruptPayload when it contradicts itself or count.
	Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error)
}

var engine = endian.GetLittleEndianEngine()

var builtinCodecs = map[format.RepresentationKind]Codec{
	format.KindDirect:            DirectCodec{},
	format.KindRunLength:         RunLengthCodec{},
	format.KindDictionaryOneByte: DictionaryCodec{},
	format.KindDeltaSignedByte:   DeltaCodec{},
	format.KindConstant:          ConstantCodec{},
	format.KindBitPacked:         BitPackedCodec{},
}

// GetCodec returns the built-in codec for kind.
func GetCodec(kind format.RepresentationKind) (Codec, error) {
	if codec, ok := builtinCodecs[kind]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: 0x%02x", errs.ErrUnknownRepresentation, uint8(kind))
}

// Decode decodes payload with the codec registered for kind.
func Decode(kind format.RepresentationKind, payload []byte, count int, valueKind format.ValueKind) (column.Column, error) {
	codec, err := GetCodec(kind)
	if err != nil {
		return column.Column{}, err
	}

	if count < 0 {
		return column.Column{}, fmt.Errorf("%w: negative value count %d", errs.ErrCorruptPayload, count)
	}

	return codec.Decode(payload, count, valueKind)
}

// encodeWith runs fill against a pooled payload buffer and returns a copy of
// what it wrote, so no returned payload aliases pooled memory.
func encodeWith(fill func(buf *pool.ByteBuffer) error) ([]byte, error) {
	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	if err := fill(buf); err != nil {
		return nil, err
	}

	return buf.Clone(), nil
}

// checkLength compares the exact payload size a decoder expects against what it got.
func checkLength(kind format.RepresentationKind, got, want int) error {
	switch {
	case got < want:
		return fmt.Errorf("%w: %s payload has %d bytes, need %d", errs.ErrTruncatedStream, kind, got, want)
	case got > want:
		return fmt.Errorf("%w: %s payload has %d trailing bytes", errs.ErrCorruptPayload, kind, got-want)
	default:
		return nil
	}
}

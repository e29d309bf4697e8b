// Package encoding provides the column codecs of coltab and the policy that picks
// between them.
//
// Every codec turns a column.Column of 4-byte values into a payload and back. The
// payload carries no row count; the surrounding block header, row group header or
// container header supplies it. Codecs are stateless values and may be shared by
// any number of goroutines.
//
// # Built-in Representations
//
//	Kind                Payload                                   Fails with
//	direct       (1)    value*                                    never
//	rle          (2)    (count u8, value)*                        never
//	dictionary   (3)    size u32, value*size, index u8 per row    ErrDictionaryOverflow
//	delta        (4)    first value, diff i8 per following row    ErrDeltaOverflow, ErrUnsupportedType
//	constant     (5)    value                                     ErrNotConstant
//	bitpacked    (6)    (bits u8, words u32, packed words)*       never
//
// All multi-byte integers are little-endian. Values are stored as their 32-bit
// patterns, so float columns round trip bit-exactly.
//
// # Selection
//
// A Selector tries the preferred representation of a column and, when the codec
// reports one of the failures above, encodes the column as Direct instead:
//
//	sel := encoding.NewSelector()
//	block, err := sel.Encode(col, format.KindDictionaryOneByte)
//	if err != nil {
//	    return err
//	}
//	// block.Kind is what must be written next to block.Payload.
//
// EncodeSmallest tries several representations and keeps the smallest payload.
//
// # Decoding
//
//	col, err := encoding.Decode(kind, payload, rowCount, format.ValueInt32)
//
// Decoders never panic on malformed input. A payload that ends early returns
// errs.ErrTruncatedStream; one that contradicts itself or the row count returns
// errs.ErrCorruptPayload.
package encoding

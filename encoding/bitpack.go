package encoding

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/pool"
)

const (
	// BitPackChunkSize is the number of values packed with one shared bit width.
	BitPackChunkSize = 1024

	chunkHeaderSize = 5 // bitsPerValue u8 + packed word count u32
	wordBits        = 32
)

// BitPackedCodec stores values in chunks of up to BitPackChunkSize, each packed
// at the minimum bit width of its largest value.
//
// Chunk layout: bitsPerValue u8, packed word count u32, packed words. Values are
// placed least-significant first, 32/bitsPerValue per word, and the last word of
// a chunk is zero padded. A chunk that needs all 32 bits is stored unpacked. The
// row-grouped payload is the bare sequence of chunks; the row count comes from
// the group header.
//
// Widths are computed on the raw 32-bit patterns, so negative int32 values and
// most float32 values produce unpacked chunks. Bit-packing never fails.
type BitPackedCodec struct{}

var _ Codec = BitPackedCodec{}

func (BitPackedCodec) Kind() format.RepresentationKind { return format.KindBitPacked }

func (BitPackedCodec) Encode(col column.Column) ([]byte, error) {
	return encodeWith(func(buf *pool.ByteBuffer) error {
		AppendBitPacked(buf, col.Words())
		return nil
	})
}

func (BitPackedCodec) Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error) {
	words, _, consumed, err := UnpackBitPacked(payload, count)
	if err != nil {
		return column.Column{}, err
	}

	if consumed != len(payload) {
		return column.Column{}, fmt.Errorf("%w: %d bytes after last chunk", errs.ErrCorruptPayload, len(payload)-consumed)
	}

	return column.FromWords(kind, words), nil
}

// BitWidth returns the packing width for a chunk: the bit length of its maximum
// value, at least 1.
func BitWidth(chunk []uint32) int {
	var maxValue uint32
	for _, w := range chunk {
		if w > maxValue {
			maxValue = w
		}
	}

	return max(1, bits.Len32(maxValue))
}

// packedWordCount returns how many 32-bit words n values of the given width occupy.
func packedWordCount(width, n int) int {
	if width >= wordBits {
		return n
	}

	perWord := wordBits / width

	return (n + perWord - 1) / perWord
}

// AppendBitPacked appends the chunks for words to buf and returns the number of
// chunks written.
func AppendBitPacked(buf *pool.ByteBuffer, words []uint32) int {
	chunks := 0
	for start := 0; start < len(words); start += BitPackChunkSize {
		chunk := words[start:min(start+BitPackChunkSize, len(words))]
		appendChunk(buf, chunk)
		chunks++
	}

	return chunks
}

func appendChunk(buf *pool.ByteBuffer, chunk []uint32) {
	width := BitWidth(chunk)
	packed := packedWordCount(width, len(chunk))

	buf.Grow(chunkHeaderSize + packed*4)
	_ = buf.WriteByte(byte(width))
	buf.B = engine.AppendUint32(buf.B, uint32(packed)) //nolint: gosec

	if width == wordBits {
		for _, w := range chunk {
			buf.B = engine.AppendUint32(buf.B, w)
		}

		return
	}

	perWord := wordBits / width
	for i := 0; i < len(chunk); i += perWord {
		var word uint32
		for k, v := range chunk[i:min(i+perWord, len(chunk))] {
			word |= v << (k * width)
		}
		buf.B = engine.AppendUint32(buf.B, word)
	}
}

// UnpackBitPacked reads chunks from src until count values are decoded.
//
// Each chunk holds min(BitPackChunkSize, remaining) values. It returns the
// decoded words, the number of chunks read and the number of bytes consumed.
func UnpackBitPacked(src []byte, count int) ([]uint32, int, int, error) {
	// A 1-bit word carries at most wordBits values.
	words := make([]uint32, 0, min(count, wordBits*(len(src)/4)))
	off, chunks := 0, 0

	for len(words) < count {
		if len(src)-off < chunkHeaderSize {
			return nil, 0, 0, fmt.Errorf("%w: chunk %d header at offset %d", errs.ErrTruncatedStream, chunks, off)
		}

		width := int(src[off])
		packed := int(engine.Uint32(src[off+1:]))
		off += chunkHeaderSize

		if width < 1 || width > wordBits {
			return nil, 0, 0, fmt.Errorf("%w: chunk %d has bit width %d", errs.ErrCorruptPayload, chunks, width)
		}

		n := min(BitPackChunkSize, count-len(words))
		if want := packedWordCount(width, n); packed != want {
			return nil, 0, 0, fmt.Errorf("%w: chunk %d has %d words, %d values at %d bits need %d",
				errs.ErrCorruptPayload, chunks, packed, n, width, want)
		}

		if len(src)-off < packed*4 {
			return nil, 0, 0, fmt.Errorf("%w: chunk %d words", errs.ErrTruncatedStream, chunks)
		}

		words = unpackChunk(words, src[off:off+packed*4], width, n)
		off += packed * 4
		chunks++
	}

	return words, chunks, off, nil
}

func unpackChunk(dst []uint32, src []byte, width, n int) []uint32 {
	if width == wordBits {
		for i := range n {
			dst = append(dst, engine.Uint32(src[i*4:]))
		}

		return dst
	}

	perWord := wordBits / width
	mask := uint32(1)<<width - 1
	for i := 0; n > 0; i++ {
		word := engine.Uint32(src[i*4:])
		for k := 0; k < perWord && n > 0; k++ {
			dst = append(dst, (word>>(k*width))&mask)
			n--
		}
	}

	return dst
}

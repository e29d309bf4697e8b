// Package container implements the single-block container used by the
// standalone codec tool: a whole file encoded with one scheme behind a 5-byte
// header.
//
//	typeByte ('C' | 'R' | 'r' | 'B'), originalLength u32
//	C: value u8                                   every input byte is value
//	R: pairCount u32, (count u32, value u32)*     runs of 4-byte words
//	r: pairCount u32, (count u32, value u8)*      runs of bytes
//	B: chunkCount u32, chunk*                     bit-packed 4-byte words
//
// The word based types read the input as little-endian 4-byte words. A trailing
// partial word is zero padded for encoding and decoding truncates the output to
// originalLength, so every input length round trips.
package container

import (
	"bytes"
	"fmt"

	"github.com/arloliu/coltab/encoding"
	"github.com/arloliu/coltab/endian"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/pool"
	"github.com/arloliu/coltab/section"
)

var engine = endian.GetLittleEndianEngine()

// Types lists the container types in the order EncodeAuto prefers them on ties.
var Types = []format.ContainerType{
	format.ContainerConstant,
	format.ContainerRunLength,
	format.ContainerByteRuns,
	format.ContainerBitPacking,
}

// Encode encodes data as a container of the given type.
//
// Returns errs.ErrEmptyInput for empty data, errs.ErrInputTooLarge when data
// does not fit a u32 length, errs.ErrNotConstant when a constant container is
// requested for differing bytes and errs.ErrUnknownMethod for an unknown type.
func Encode(data []byte, typ format.ContainerType) ([]byte, error) {
	if len(data) == 0 {
		return nil, errs.ErrEmptyInput
	}

	if uint64(len(data)) > section.MaxCount {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInputTooLarge, len(data))
	}

	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	header := section.ContainerHeader{Type: typ, OriginalLength: uint32(len(data))} //nolint: gosec
	_, _ = buf.Write(header.Bytes())

	var err error
	switch typ {
	case format.ContainerConstant:
		err = encodeConstant(buf, data)
	case format.ContainerRunLength:
		encodeWordRuns(buf, data)
	case format.ContainerByteRuns:
		encodeByteRuns(buf, data)
	case format.ContainerBitPacking:
		encodeBitPacking(buf, data)
	default:
		err = fmt.Errorf("%w: container type 0x%02x", errs.ErrUnknownMethod, uint8(typ))
	}
	if err != nil {
		return nil, err
	}

	return buf.Clone(), nil
}

// EncodeAuto encodes data with every applicable container type and returns the
// smallest result together with its type.
func EncodeAuto(data []byte) ([]byte, format.ContainerType, error) {
	var (
		best    []byte
		bestTyp format.ContainerType
	)

	for _, typ := range Types {
		out, err := Encode(data, typ)
		if err != nil {
			if typ == format.ContainerConstant && errs.IsCodecFailure(err) {
				continue
			}

			return nil, 0, err
		}

		if best == nil || len(out) < len(best) {
			best, bestTyp = out, typ
		}
	}

	return best, bestTyp, nil
}

// Header parses the container header at the start of data.
func Header(data []byte) (section.ContainerHeader, error) {
	var h section.ContainerHeader
	if len(data) < section.ContainerHeaderSize {
		return h, fmt.Errorf("%w: container header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), section.ContainerHeaderSize)
	}

	err := h.Parse(data[:section.ContainerHeaderSize])

	return h, err
}

// Decode restores the original bytes of a container.
//
// Returns errs.ErrTruncatedStream when data ends before the header or payload
// promise, errs.ErrCorruptPayload when the payload contradicts the header and
// errs.ErrUnknownRepresentation for an unrecognized type byte.
func Decode(data []byte) ([]byte, error) {
	h, err := Header(data)
	if err != nil {
		return nil, err
	}

	payload := data[section.ContainerHeaderSize:]
	length := int(h.OriginalLength)

	switch h.Type {
	case format.ContainerConstant:
		return decodeConstant(payload, length)
	case format.ContainerRunLength:
		return decodeWordRuns(payload, length)
	case format.ContainerByteRuns:
		return decodeByteRuns(payload, length)
	case format.ContainerBitPacking:
		return decodeBitPacking(payload, length)
	default:
		return nil, fmt.Errorf("%w: container type 0x%02x", errs.ErrUnknownRepresentation, uint8(h.Type))
	}
}

func encodeConstant(buf *pool.ByteBuffer, data []byte) error {
	for i, b := range data {
		if b != data[0] {
			return fmt.Errorf("%w: byte %d differs from byte 0", errs.ErrNotConstant, i)
		}
	}

	return buf.WriteByte(data[0])
}

func decodeConstant(payload []byte, length int) ([]byte, error) {
	switch {
	case len(payload) < 1:
		return nil, fmt.Errorf("%w: constant value missing", errs.ErrTruncatedStream)
	case len(payload) > 1:
		return nil, fmt.Errorf("%w: %d bytes after constant value", errs.ErrCorruptPayload, len(payload)-1)
	}

	return bytes.Repeat(payload[:1], length), nil
}

// wordCount returns the number of 4-byte words, the last possibly partial, in n bytes.
func wordCount(n int) int {
	return (n + 3) / 4
}

// withWords calls fn with data read as zero padded little-endian words from a pooled slice.
func withWords(data []byte, fn func(words []uint32)) {
	words, cleanup := pool.GetUint32Slice(wordCount(len(data)))
	defer cleanup()

	full := len(data) / 4
	for i := range full {
		words[i] = engine.Uint32(data[i*4:])
	}

	if rest := data[full*4:]; len(rest) > 0 {
		var tail [4]byte
		copy(tail[:], rest)
		words[full] = engine.Uint32(tail[:])
	}

	fn(words)
}

// wordsToBytes serializes words and truncates the result to length bytes.
func wordsToBytes(words []uint32, length int) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = engine.AppendUint32(out, w)
	}

	return out[:length]
}

func encodeWordRuns(buf *pool.ByteBuffer, data []byte) {
	withWords(data, func(words []uint32) {
		countOff := buf.Len()
		buf.ExtendOrGrow(4)

		pairs := uint32(0)
		for i := 0; i < len(words); {
			j := i + 1
			for j < len(words) && words[j] == words[i] {
				j++
			}
			buf.B = engine.AppendUint32(buf.B, uint32(j-i)) //nolint: gosec
			buf.B = engine.AppendUint32(buf.B, words[i])
			pairs++
			i = j
		}

		engine.PutUint32(buf.B[countOff:], pairs)
	})
}

func decodeWordRuns(payload []byte, length int) ([]byte, error) {
	pairs, body, err := readPairCount(payload, 8)
	if err != nil {
		return nil, err
	}

	want := wordCount(length)
	total := 0
	for i := range pairs {
		count := int(engine.Uint32(body[i*8:]))
		if count == 0 {
			return nil, fmt.Errorf("%w: empty run %d", errs.ErrCorruptPayload, i)
		}
		total += count
		if total > want {
			return nil, fmt.Errorf("%w: runs exceed %d words", errs.ErrCorruptPayload, want)
		}
	}

	if total != want {
		return nil, fmt.Errorf("%w: runs hold %d of %d words", errs.ErrTruncatedStream, total, want)
	}

	words := make([]uint32, 0, want)
	for i := range pairs {
		count := int(engine.Uint32(body[i*8:]))
		value := engine.Uint32(body[i*8+4:])
		for range count {
			words = append(words, value)
		}
	}

	return wordsToBytes(words, length), nil
}

func encodeByteRuns(buf *pool.ByteBuffer, data []byte) {
	countOff := buf.Len()
	buf.ExtendOrGrow(4)

	pairs := uint32(0)
	for i := 0; i < len(data); {
		j := i + 1
		for j < len(data) && data[j] == data[i] {
			j++
		}
		buf.B = engine.AppendUint32(buf.B, uint32(j-i)) //nolint: gosec
		_ = buf.WriteByte(data[i])
		pairs++
		i = j
	}

	engine.PutUint32(buf.B[countOff:], pairs)
}

func decodeByteRuns(payload []byte, length int) ([]byte, error) {
	pairs, body, err := readPairCount(payload, 5)
	if err != nil {
		return nil, err
	}

	total := 0
	for i := range pairs {
		count := int(engine.Uint32(body[i*5:]))
		if count == 0 {
			return nil, fmt.Errorf("%w: empty run %d", errs.ErrCorruptPayload, i)
		}
		total += count
		if total > length {
			return nil, fmt.Errorf("%w: runs exceed %d bytes", errs.ErrCorruptPayload, length)
		}
	}

	if total != length {
		return nil, fmt.Errorf("%w: runs hold %d of %d bytes", errs.ErrTruncatedStream, total, length)
	}

	out := make([]byte, 0, length)
	for i := range pairs {
		count := int(engine.Uint32(body[i*5:]))
		for range count {
			out = append(out, body[i*5+4])
		}
	}

	return out, nil
}

// readPairCount reads the pair count and checks that exactly that many pairs of
// pairSize bytes follow.
func readPairCount(payload []byte, pairSize int) (int, []byte, error) {
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf("%w: pair count missing", errs.ErrTruncatedStream)
	}

	pairs := int(engine.Uint32(payload))
	body := payload[4:]
	if len(body)/pairSize < pairs {
		return 0, nil, fmt.Errorf("%w: %d pairs need %d bytes, %d left", errs.ErrTruncatedStream, pairs, pairs*pairSize, len(body))
	}

	if len(body) != pairs*pairSize {
		return 0, nil, fmt.Errorf("%w: %d bytes after last pair", errs.ErrCorruptPayload, len(body)-pairs*pairSize)
	}

	return pairs, body, nil
}

func encodeBitPacking(buf *pool.ByteBuffer, data []byte) {
	withWords(data, func(words []uint32) {
		countOff := buf.Len()
		buf.ExtendOrGrow(4)
		chunks := encoding.AppendBitPacked(buf, words)
		engine.PutUint32(buf.B[countOff:], uint32(chunks)) //nolint: gosec
	})
}

func decodeBitPacking(payload []byte, length int) ([]byte, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: chunk count missing", errs.ErrTruncatedStream)
	}

	chunkCount := int(engine.Uint32(payload))
	want := wordCount(length)
	if expected := (want + encoding.BitPackChunkSize - 1) / encoding.BitPackChunkSize; chunkCount != expected {
		return nil, fmt.Errorf("%w: %d chunks for %d words, need %d", errs.ErrCorruptPayload, chunkCount, want, expected)
	}

	words, _, consumed, err := encoding.UnpackBitPacked(payload[4:], want)
	if err != nil {
		return nil, err
	}

	if consumed != len(payload)-4 {
		return nil, fmt.Errorf("%w: %d bytes after last chunk", errs.ErrCorruptPayload, len(payload)-4-consumed)
	}

	return wordsToBytes(words, length), nil
}

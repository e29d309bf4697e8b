package section

import (
	"fmt"

	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// BlockHeader precedes the payloads of a row group, one per column.
type BlockHeader struct {
	// Kind is the representation the payload was encoded with.
	Kind format.RepresentationKind // byte offset 0
	// Length is the stored payload length, after compression if any.
	Length uint32 // byte offset 1-4
}

// NewBlockHeader creates a BlockHeader.
func NewBlockHeader(kind format.RepresentationKind, length int) BlockHeader {
	return BlockHeader{Kind: kind, Length: uint32(length)} //nolint: gosec
}

// Parse parses the header from a byte slice of exactly BlockHeaderSize bytes.
//
// The kind byte is not validated here; decoding the payload reports an unknown kind.
func (h *BlockHeader) Parse(data []byte) error {
	if len(data) != BlockHeaderSize {
		return fmt.Errorf("%w: block header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), BlockHeaderSize)
	}

	h.Kind = format.RepresentationKind(data[0])
	h.Length = engine.Uint32(data[1:5])

	return nil
}

// Bytes serializes the BlockHeader into a byte slice.
func (h BlockHeader) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, BlockHeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h BlockHeader) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(h.Kind))

	return engine.AppendUint32(dst, h.Length)
}

// ContainerHeader is the header of a single-block container.
type ContainerHeader struct {
	// Type selects the payload format.
	Type format.ContainerType // byte offset 0
	// OriginalLength is the length in bytes of the stream the container encodes.
	OriginalLength uint32 // byte offset 1-4
}

// Parse parses the header from a byte slice of exactly ContainerHeaderSize bytes.
func (h *ContainerHeader) Parse(data []byte) error {
	if len(data) != ContainerHeaderSize {
		return fmt.Errorf("%w: container header is %d bytes, need %d", errs.ErrTruncatedStream, len(data), ContainerHeaderSize)
	}

	h.Type = format.ContainerType(data[0])
	h.OriginalLength = engine.Uint32(data[1:5])

	return nil
}

// Bytes serializes the ContainerHeader into a byte slice.
func (h ContainerHeader) Bytes() []byte {
	b := make([]byte, ContainerHeaderSize)
	b[0] = byte(h.Type)
	engine.PutUint32(b[1:5], h.OriginalLength)

	return b
}

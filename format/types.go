package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/coltab/errs"
)

type (
	RepresentationKind uint8
	ValueKind          uint8
	ContainerType      uint8
	CompressionType    uint8
)

const (
	KindDirect            RepresentationKind = 0x1 // KindDirect stores every value at 4 bytes.
	KindRunLength         RepresentationKind = 0x2 // KindRunLength stores (count, value) records.
	KindDictionaryOneByte RepresentationKind = 0x3 // KindDictionaryOneByte stores a dictionary plus one index byte per value.
	KindDeltaSignedByte   RepresentationKind = 0x4 // KindDeltaSignedByte stores the first value plus signed-byte deltas.
	KindConstant          RepresentationKind = 0x5 // KindConstant stores a single value.
	KindBitPacked         RepresentationKind = 0x6 // KindBitPacked stores chunks of minimum-width packed words.
)

const (
	ValueInt32   ValueKind = 0x1 // ValueInt32 is a signed 32-bit integer column.
	ValueFloat32 ValueKind = 0x2 // ValueFloat32 is an IEEE-754 single precision column.
)

// Standalone container type bytes. They are ASCII letters so a hex dump of a
// container file shows its type at a glance.
const (
	ContainerConstant   ContainerType = 'C' // ContainerConstant holds one repeated byte.
	ContainerRunLength  ContainerType = 'R' // ContainerRunLength holds word runs (count u32, value u32).
	ContainerByteRuns   ContainerType = 'r' // ContainerByteRuns holds byte runs (count u32, value u8).
	ContainerBitPacking ContainerType = 'B' // ContainerBitPacking holds bit-packed word chunks.
)

const (
	CompressionNone   CompressionType = 0x1 // CompressionNone stores payloads as encoded.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy represents Snappy compression.
)

func (k RepresentationKind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindRunLength:
		return "rle"
	case KindDictionaryOneByte:
		return "dictionary"
	case KindDeltaSignedByte:
		return "delta"
	case KindConstant:
		return "constant"
	case KindBitPacked:
		return "bitpacked"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(k))
	}
}

// IsValid reports whether k is one of the known representation kinds.
func (k RepresentationKind) IsValid() bool {
	return k >= KindDirect && k <= KindBitPacked
}

// ParseRepresentationKind parses a representation name as printed by String.
func ParseRepresentationKind(s string) (RepresentationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "":
		return KindDirect, nil
	case "rle", "run-length", "runlength":
		return KindRunLength, nil
	case "dictionary", "dict":
		return KindDictionaryOneByte, nil
	case "delta":
		return KindDeltaSignedByte, nil
	case "constant":
		return KindConstant, nil
	case "bitpacked", "bit", "bitpack":
		return KindBitPacked, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownRepresentation, s)
	}
}

func (v ValueKind) String() string {
	switch v {
	case ValueInt32:
		return "int32"
	case ValueFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

// IsValid reports whether v is Int32 or Float32.
func (v ValueKind) IsValid() bool {
	return v == ValueInt32 || v == ValueFloat32
}

// ParseValueKind parses "int32" or "float32".
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int32", "int", "i32":
		return ValueInt32, nil
	case "float32", "float", "f32":
		return ValueFloat32, nil
	default:
		return 0, fmt.Errorf("%w: value kind %q", errs.ErrInvalidHeader, s)
	}
}

func (c ContainerType) String() string {
	switch c {
	case ContainerConstant:
		return "constant"
	case ContainerRunLength:
		return "rle"
	case ContainerByteRuns:
		return "rle8"
	case ContainerBitPacking:
		return "bit"
	default:
		return "unknown"
	}
}

// ParseContainerType maps a CLI method name to its container type.
func ParseContainerType(method string) (ContainerType, error) {
	switch method {
	case "constant":
		return ContainerConstant, nil
	case "rle":
		return ContainerRunLength, nil
	case "rle8":
		return ContainerByteRuns, nil
	case "bit":
		return ContainerBitPacking, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownMethod, method)
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// ParseCompressionType parses a compression name as printed by String.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownCompression, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k RepresentationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so kinds may be named in
// configuration files.
func (k *RepresentationKind) UnmarshalText(text []byte) error {
	parsed, err := ParseRepresentationKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c CompressionType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CompressionType) UnmarshalText(text []byte) error {
	parsed, err := ParseCompressionType(string(text))
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}

// Package endian provides the byte order engine used by coltab encoders and decoders.
//
// Every coltab format is little-endian, both the row-grouped table layouts and the
// standalone container. The engine combines binary.ByteOrder and
// binary.AppendByteOrder so codecs can either write into a pre-sized slice or
// append to a growing one:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, word)
//	word = engine.Uint32(buf[off:])
//
// The returned engine is immutable and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

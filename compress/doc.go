// Package compress provides the optional second compression stage applied to
// the stored block payloads of a coltab table.
//
// A column is first encoded by one of the codecs of package encoding. When a
// table is written with a compression type other than format.CompressionNone,
// every resulting payload is then compressed on its own and the block header
// records the compressed length. The representation kind in the block header
// always describes the payload after decompression.
//
// # Supported Algorithms
//
//	format.CompressionNone    NoOpCompressor    payload stored as is
//	format.CompressionZstd    ZstdCompressor    best ratio, klauspost/compress (or gozstd with cgo)
//	format.CompressionS2      S2Compressor      fast, klauspost/compress/s2
//	format.CompressionLZ4     LZ4Compressor     fastest decode, pierrec/lz4
//	format.CompressionSnappy  SnappyCompressor  snappy block format, golang/snappy
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	stored, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(stored)
//
// GetCodec returns shared instances; CreateCodec returns a fresh one. All codecs
// are safe for concurrent use. Empty input compresses to an empty result for
// every algorithm except zstd, which always writes a frame header.
package compress

package compress

// ZstdCompressor compresses payloads with Zstandard.
//
// The pure Go implementation from klauspost/compress is used by default. Building
// with both cgo and the gozstd tag switches to the cgo binding of the reference
// library; the two produce interchangeable frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

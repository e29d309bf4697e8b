package compress

// NoOpCompressor stores payloads as they are. Tables written without
// compression use it so the read and write paths stay uniform.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data without copying it.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data without copying it.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

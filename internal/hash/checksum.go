package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of the concatenation of parts without copying them.
func Checksum(parts ...[]byte) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.Write(p)
	}

	return d.Sum64()
}

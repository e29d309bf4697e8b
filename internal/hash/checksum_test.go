package hash

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_MatchesWholeBuffer(t *testing.T) {
	whole := []byte("direct payload followed by rle payload")
	require.Equal(t, xxhash.Sum64(whole), Checksum(whole[:6], whole[6:20], whole[20:]))
}

func TestChecksum_Empty(t *testing.T) {
	assert.Equal(t, uint64(0xef46db3751d8e999), Checksum())
	assert.Equal(t, Checksum(), Checksum(nil, []byte{}))
}

func TestChecksum_DetectsChange(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 5}
	assert.NotEqual(t, Checksum(a), Checksum(b))
}

package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/coltab/errs"
)

func TestRepresentationKind_ParseString(t *testing.T) {
	kinds := []RepresentationKind{
		KindDirect, KindRunLength, KindDictionaryOneByte,
		KindDeltaSignedByte, KindConstant, KindBitPacked,
	}

	for _, kind := range kinds {
		require.True(t, kind.IsValid())

		parsed, err := ParseRepresentationKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, parsed)
	}

	require.False(t, RepresentationKind(0).IsValid())
	require.False(t, RepresentationKind(7).IsValid())
	require.Equal(t, "unknown(0x07)", RepresentationKind(7).String())

	_, err := ParseRepresentationKind("huffman")
	require.ErrorIs(t, err, errs.ErrUnknownRepresentation)
}

func TestRepresentationKind_Discriminants(t *testing.T) {
	require.Equal(t, uint8(1), uint8(KindDirect))
	require.Equal(t, uint8(2), uint8(KindRunLength))
	require.Equal(t, uint8(3), uint8(KindDictionaryOneByte))
	require.Equal(t, uint8(4), uint8(KindDeltaSignedByte))
}

func TestRepresentationKind_Text(t *testing.T) {
	var kind RepresentationKind
	require.NoError(t, kind.UnmarshalText([]byte("delta")))
	require.Equal(t, KindDeltaSignedByte, kind)

	text, err := KindBitPacked.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "bitpacked", string(text))

	require.Error(t, kind.UnmarshalText([]byte("nope")))
	require.Equal(t, KindDeltaSignedByte, kind)
}

func TestValueKind(t *testing.T) {
	for _, s := range []string{"int32", "INT", "i32"} {
		v, err := ParseValueKind(s)
		require.NoError(t, err)
		require.Equal(t, ValueInt32, v)
	}

	v, err := ParseValueKind(" float32 ")
	require.NoError(t, err)
	require.Equal(t, ValueFloat32, v)
	require.Equal(t, "float32", v.String())

	_, err = ParseValueKind("int64")
	require.Error(t, err)
	require.False(t, ValueKind(0).IsValid())
}

func TestContainerType(t *testing.T) {
	tests := []struct {
		method string
		want   ContainerType
		tag    byte
	}{
		{"constant", ContainerConstant, 'C'},
		{"rle", ContainerRunLength, 'R'},
		{"rle8", ContainerByteRuns, 'r'},
		{"bit", ContainerBitPacking, 'B'},
	}

	for _, tt := range tests {
		got, err := ParseContainerType(tt.method)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
		require.Equal(t, tt.tag, byte(got))
		require.Equal(t, tt.method, got.String())
	}

	_, err := ParseContainerType("huffman")
	require.ErrorIs(t, err, errs.ErrUnknownMethod)
}

func TestCompressionType(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4, CompressionSnappy} {
		parsed, err := ParseCompressionType(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
	}

	var c CompressionType
	require.NoError(t, c.UnmarshalText([]byte("lz4")))
	require.Equal(t, CompressionLZ4, c)

	_, err := ParseCompressionType("brotli")
	require.ErrorIs(t, err, errs.ErrUnknownCompression)
}

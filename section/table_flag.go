package section

import (
	"fmt"

	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// TableFlag is the packed first word of a TableHeader.
type TableFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is the checksum flag, 1 means every row group carries an xxHash64 of its payloads.
	// Bit 1-3 are reserved for future use, must be set to 0.
	// Bit 4-15 are the magic number MagicTableV2Opt.
	Options uint16

	// Layout is the table layout, always LayoutRowGroup for a TableHeader.
	Layout uint8

	// CompressionType is the format.CompressionType applied to every stored payload.
	CompressionType uint8
}

// NewTableFlag creates a TableFlag for an uncompressed table without checksums.
func NewTableFlag() TableFlag {
	return TableFlag{
		Options:         MagicTableV2Opt,
		Layout:          LayoutRowGroup,
		CompressionType: uint8(format.CompressionNone),
	}
}

// HasChecksum returns whether row groups carry a checksum.
func (f TableFlag) HasChecksum() bool {
	return (f.Options & ChecksumMask) != 0
}

// SetChecksum enables or disables row group checksums.
func (f *TableFlag) SetChecksum(enabled bool) {
	if enabled {
		f.Options |= ChecksumMask
	} else {
		f.Options &^= ChecksumMask
	}
}

// Compression returns the payload compression type.
func (f TableFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the payload compression type.
func (f *TableFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// GetMagicNumber returns the magic number from the Options field.
func (f TableFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber checks if the magic number is valid.
func (f TableFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicTableV2Opt
}

// Validate checks if the flag contains valid values.
func (f TableFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return fmt.Errorf("%w: magic number 0x%04x", errs.ErrInvalidHeader, f.GetMagicNumber())
	}

	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved option bits 0x%04x", errs.ErrInvalidHeader, f.Options&ReservedBitsMask)
	}

	if f.Layout != LayoutRowGroup {
		return fmt.Errorf("%w: layout %d", errs.ErrInvalidHeader, f.Layout)
	}

	switch f.Compression() {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2,
		format.CompressionLZ4, format.CompressionSnappy:
		return nil
	default:
		return fmt.Errorf("%w: compression type %d", errs.ErrInvalidHeader, f.CompressionType)
	}
}

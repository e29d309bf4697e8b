package section

import "math"

const (
	// Bit masks of TableFlag.Options
	ChecksumMask     = 0x0001 // Mask for row group checksum bit (bit 0)
	ReservedBitsMask = 0x000E // Mask for reserved bits (bits 1-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicTableV2Opt = 0xC710 // MagicTableV2Opt identifies the row-grouped table format with persisted group sizes.

	// Table layouts
	LayoutLegacy   = 0x1 // LayoutLegacy is the original layout: no magic, no group sizes, Int32 by convention.
	LayoutRowGroup = 0x2 // LayoutRowGroup is the default layout described by TableHeader.
)

// section sizes in bytes
const (
	TableHeaderSize       = 16 // flag (4) + rowCount + columnCount + maxGroupRows
	LegacyTableHeaderSize = 8  // rowCount + columnCount
	GroupHeaderSize       = 4  // groupRows
	BlockHeaderSize       = 5  // kind + blockLen
	ChecksumSize          = 8  // xxHash64 of a row group's stored payloads
	ContainerHeaderSize   = 5  // type + originalLength

	MaxCount = math.MaxUint32 // largest row, column or byte count a u32 field holds
)

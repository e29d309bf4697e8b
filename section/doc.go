// Package section defines the fixed-size binary headers of the coltab formats.
//
// # Row-Grouped Table
//
//	┌──────────────────────────────────────────────────────────┐
//	│ TableHeader (16 bytes)                                   │
//	│  - Flag (4 bytes): options/magic, layout, compression    │
//	│  - RowCount, ColumnCount, MaxGroupRows (4 bytes each)    │
//	├──────────────────────────────────────────────────────────┤
//	│ Column value kinds (ColumnCount × 1 byte)                │
//	├──────────────────────────────────────────────────────────┤
//	│ Row group × ceil(RowCount / MaxGroupRows)                │
//	│  - groupRows (4 bytes)                                   │
//	│  - BlockHeader × ColumnCount (5 bytes each)              │
//	│  - checksum (8 bytes, when the checksum bit is set)      │
//	│  - payload × ColumnCount                                 │
//	└──────────────────────────────────────────────────────────┘
//
// The legacy layout keeps only an 8-byte LegacyTableHeader followed by groups
// of block headers and payloads; group sizes and value kinds are supplied by
// the reader.
//
// # Single-Block Container
//
//	┌──────────────────────────────────────────────────────────┐
//	│ ContainerHeader (5 bytes): type, original length         │
//	├──────────────────────────────────────────────────────────┤
//	│ type-specific payload                                    │
//	└──────────────────────────────────────────────────────────┘
//
// All multi-byte fields are little-endian.
package section

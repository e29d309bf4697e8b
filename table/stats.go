package table

import (
	"github.com/arloliu/coltab/compress"
	"github.com/arloliu/coltab/encoding"
	"github.com/arloliu/coltab/format"
)

// Stats describes what an Encoder wrote.
type Stats struct {
	Rows    int
	Columns int
	Groups  int
	// BytesWritten is the total file size including headers.
	BytesWritten int64
	// Compression sums block payload sizes before and after compression.
	Compression compress.Stats
	// Kinds counts the blocks written per representation kind.
	Kinds map[format.RepresentationKind]int
	// Fallbacks counts blocks whose preferred codec refused the group.
	Fallbacks int
}

func newStats(rows, columns int, compression format.CompressionType) Stats {
	return Stats{
		Rows:        rows,
		Columns:     columns,
		Compression: compress.Stats{Algorithm: compression},
		Kinds:       make(map[format.RepresentationKind]int),
	}
}

func (s *Stats) addBlock(block encoding.Block, stored int) {
	s.Kinds[block.Kind]++
	s.Compression.Add(len(block.Payload), stored)
	if block.FellBack() {
		s.Fallbacks++
	}
}

// Blocks returns the number of blocks written.
func (s Stats) Blocks() int {
	n := 0
	for _, c := range s.Kinds {
		n += c
	}

	return n
}

// BytesPerRow returns the file size divided by the row count, or 0 for an empty table.
func (s Stats) BytesPerRow() float64 {
	if s.Rows == 0 {
		return 0
	}

	return float64(s.BytesWritten) / float64(s.Rows)
}

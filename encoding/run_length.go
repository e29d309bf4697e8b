package encoding

import (
	"fmt"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/pool"
)

const (
	// MaxRunRecord is the largest count a single row-grouped run record holds.
	MaxRunRecord = 255

	runRecordSize = 5 // count u8 + value u32
)

// RunLengthCodec stores consecutive equal values as (count u8, value u32) records.
//
// A run longer than MaxRunRecord is split into records of 255 followed by one
// record for the remainder; no empty record is written when the run length is
// an exact multiple of 255. The codec accepts every column but expands data
// with few repeats by 25%.
type RunLengthCodec struct{}

var _ Codec = RunLengthCodec{}

func (RunLengthCodec) Kind() format.RepresentationKind { return format.KindRunLength }

func (RunLengthCodec) Encode(col column.Column) ([]byte, error) {
	words := col.Words()

	return encodeWith(func(buf *pool.ByteBuffer) error {
		for i := 0; i < len(words); {
			v := words[i]
			j := i + 1
			for j < len(words) && words[j] == v {
				j++
			}
			appendRuns(buf, j-i, v)
			i = j
		}

		return nil
	})
}

func appendRuns(buf *pool.ByteBuffer, count int, v uint32) {
	for count > MaxRunRecord {
		_ = buf.WriteByte(MaxRunRecord)
		buf.B = engine.AppendUint32(buf.B, v)
		count -= MaxRunRecord
	}
	_ = buf.WriteByte(byte(count))
	buf.B = engine.AppendUint32(buf.B, v)
}

func (RunLengthCodec) Decode(payload []byte, count int, kind format.ValueKind) (column.Column, error) {
	// A record expands to at most MaxRunRecord values, which bounds what the
	// payload can hold regardless of the count the caller claims.
	words := make([]uint32, 0, min(count, MaxRunRecord*(len(payload)/runRecordSize)))

	for off := 0; off < len(payload); off += runRecordSize {
		if len(payload)-off < runRecordSize {
			return column.Column{}, fmt.Errorf("%w: partial run record at offset %d", errs.ErrTruncatedStream, off)
		}

		n := int(payload[off])
		if n == 0 {
			return column.Column{}, fmt.Errorf("%w: empty run record at offset %d", errs.ErrCorruptPayload, off)
		}
		if len(words)+n > count {
			return column.Column{}, fmt.Errorf("%w: runs exceed %d values", errs.ErrCorruptPayload, count)
		}

		v := engine.Uint32(payload[off+1:])
		for range n {
			words = append(words, v)
		}
	}

	if len(words) != count {
		return column.Column{}, fmt.Errorf("%w: runs hold %d of %d values", errs.ErrTruncatedStream, len(words), count)
	}

	return column.FromWords(kind, words), nil
}

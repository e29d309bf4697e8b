package table

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/coltab/column"
	"github.com/arloliu/coltab/compress"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/section"
)

func fixtureColumns() []column.Column {
	return []column.Column{
		column.FromInt32s([]int32{1, 2, 3}),
		column.FromInt32s([]int32{7, 7, 7}),
	}
}

func encodeColumns(t *testing.T, cols []column.Column, opts ...Option) ([]byte, Stats) {
	t.Helper()

	enc, err := NewEncoder(opts...)
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := enc.EncodeColumns(&buf, cols)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), stats.BytesWritten)

	return buf.Bytes(), stats
}

func requireColumnsEqual(t *testing.T, want, got []column.Column) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, want[i].Equal(got[i]), "column %d differs", i)
	}
}

func TestEncoder_LegacyLayoutFixture(t *testing.T) {
	data, stats := encodeColumns(t, fixtureColumns(),
		WithLegacyLayout(),
		WithMaxRowGroupSize(2),
		WithPreferredKinds(format.KindDirect, format.KindConstant),
	)

	want := []byte{
		3, 0, 0, 0, 2, 0, 0, 0, // rowCount, columnCount
		// group 0: headers then payloads
		1, 8, 0, 0, 0,
		5, 4, 0, 0, 0,
		1, 0, 0, 0, 2, 0, 0, 0,
		7, 0, 0, 0,
		// group 1
		1, 4, 0, 0, 0,
		5, 4, 0, 0, 0,
		3, 0, 0, 0,
		7, 0, 0, 0,
	}
	require.Equal(t, want, data)
	require.Equal(t, 2, stats.Groups)
	require.Equal(t, 4, stats.Blocks())
	require.Equal(t, 2, stats.Kinds[format.KindConstant])
	require.Equal(t, compress.Stats{Algorithm: format.CompressionNone, OriginalSize: 20, CompressedSize: 20}, stats.Compression)

	dec, err := NewDecoder(data, WithLegacyLayout(), WithMaxRowGroupSize(2))
	require.NoError(t, err)
	require.Equal(t, section.LayoutLegacy, int(dec.Header().Layout))
	require.Equal(t, []format.ValueKind{format.ValueInt32, format.ValueInt32}, dec.Header().Kinds)

	tbl, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, 3, tbl.RowCount)
	requireColumnsEqual(t, fixtureColumns(), tbl.Columns)
}

func TestEncoder_DefaultLayoutFixture(t *testing.T) {
	data, _ := encodeColumns(t, fixtureColumns(),
		WithMaxRowGroupSize(2),
		WithPreferredKinds(format.KindDirect, format.KindConstant),
	)

	want := []byte{
		0x10, 0xc7, 2, 1, // options, layout, compression
		3, 0, 0, 0, // rowCount
		2, 0, 0, 0, // columnCount
		2, 0, 0, 0, // maxGroupRows
		1, 1, // value kinds
		2, 0, 0, 0, // group 0 rows
		1, 8, 0, 0, 0,
		5, 4, 0, 0, 0,
		1, 0, 0, 0, 2, 0, 0, 0,
		7, 0, 0, 0,
		1, 0, 0, 0, // group 1 rows
		1, 4, 0, 0, 0,
		5, 4, 0, 0, 0,
		3, 0, 0, 0,
		7, 0, 0, 0,
	}
	require.Equal(t, want, data)

	tbl, err := ReadBytes(data)
	require.NoError(t, err)
	requireColumnsEqual(t, fixtureColumns(), tbl.Columns)
}

func mixedColumns(rows int) []column.Column {
	rng := rand.New(rand.NewPCG(3, 9))

	ids := make([]int32, rows)
	ages := make([]int32, rows)
	prices := make([]float32, rows)
	countries := make([]int32, rows)
	flags := make([]int32, rows)
	for i := range rows {
		ids[i] = int32(i + 1)
		ages[i] = 18 + rng.Int32N(60)
		prices[i] = float32(rng.IntN(10000)) / 100
		countries[i] = rng.Int32N(600)
		flags[i] = int32(i / 700 % 2)
	}

	return []column.Column{
		column.FromInt32s(ids),
		column.FromInt32s(ages),
		column.FromFloat32s(prices),
		column.FromInt32s(countries),
		column.FromInt32s(flags),
	}
}

var mixedPreferred = []format.RepresentationKind{
	format.KindDeltaSignedByte,
	format.KindBitPacked,
	format.KindDeltaSignedByte, // float column, always falls back
	format.KindDictionaryOneByte,
	format.KindRunLength,
}

func TestEncoder_RoundTrip(t *testing.T) {
	cols := mixedColumns(2500)

	for _, compression := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2,
		format.CompressionLZ4, format.CompressionSnappy,
	} {
		for _, checksum := range []bool{false, true} {
			name := compression.String()
			if checksum {
				name += "+checksum"
			}

			t.Run(name, func(t *testing.T) {
				data, stats := encodeColumns(t, cols,
					WithMaxRowGroupSize(1000),
					WithPreferredKinds(mixedPreferred...),
					WithCompression(compression),
					WithChecksum(checksum),
				)
				require.Equal(t, 3, stats.Groups)
				require.Equal(t, 15, stats.Blocks())
				require.Positive(t, stats.Fallbacks)

				dec, err := NewDecoder(data)
				require.NoError(t, err)
				require.Equal(t, compression, dec.Header().Compression)
				require.Equal(t, checksum, dec.Header().Checksum)
				require.Equal(t, 1000, dec.Header().MaxGroupRows)

				tbl, err := dec.Decode()
				require.NoError(t, err)
				require.Equal(t, 2500, tbl.RowCount)
				require.Equal(t, format.ValueFloat32, tbl.Kinds[2])
				requireColumnsEqual(t, cols, tbl.Columns)
			})
		}
	}
}

func TestEncoder_FallbackRecordsDirect(t *testing.T) {
	col := column.FromInt32s([]int32{0, 1000, 2000, 3000})
	data, stats := encodeColumns(t, []column.Column{col}, WithPreferredKinds(format.KindDeltaSignedByte))
	require.Equal(t, 1, stats.Fallbacks)
	require.Equal(t, 1, stats.Kinds[format.KindDirect])

	dec, err := NewDecoder(data)
	require.NoError(t, err)
	for group, err := range dec.RowGroups() {
		require.NoError(t, err)
		require.Equal(t, format.KindDirect, group.Blocks[0].Kind)
		require.Equal(t, uint32(16), group.Blocks[0].Length)
	}
}

func TestEncoder_CompressionStats(t *testing.T) {
	values := make([]int32, 4096)
	for i := range values {
		values[i] = int32(i % 8) //nolint: gosec
	}
	cols := []column.Column{column.FromInt32s(values)}

	_, stats := encodeColumns(t, cols, WithMaxRowGroupSize(1024), WithCompression(format.CompressionZstd))
	require.Equal(t, format.CompressionZstd, stats.Compression.Algorithm)
	require.Equal(t, int64(4*len(values)), stats.Compression.OriginalSize)
	require.Less(t, stats.Compression.CompressedSize, stats.Compression.OriginalSize)
	require.Greater(t, stats.Compression.SpaceSavings(), 50.0)
}

func TestEncoder_AdaptiveSelection(t *testing.T) {
	cols := mixedColumns(3000)

	adaptive, adaptiveStats := encodeColumns(t, cols, WithAdaptiveSelection())
	fixed, _ := encodeColumns(t, cols)
	require.Less(t, len(adaptive), len(fixed))
	require.Zero(t, adaptiveStats.Fallbacks)
	require.Positive(t, adaptiveStats.Kinds[format.KindDeltaSignedByte])

	tbl, err := ReadBytes(adaptive)
	require.NoError(t, err)
	requireColumnsEqual(t, cols, tbl.Columns)
}

func TestEncoder_ParallelMatchesSequential(t *testing.T) {
	cols := mixedColumns(4000)
	opts := []Option{
		WithMaxRowGroupSize(512),
		WithPreferredKinds(mixedPreferred...),
		WithCompression(format.CompressionS2),
		WithChecksum(true),
	}

	sequential, seqStats := encodeColumns(t, cols, opts...)
	parallel, parStats := encodeColumns(t, cols, append(opts, WithConcurrency(4))...)
	require.Equal(t, sequential, parallel)
	require.Equal(t, seqStats, parStats)

	dec, err := NewDecoder(parallel, WithConcurrency(4))
	require.NoError(t, err)
	tbl, err := dec.Decode()
	require.NoError(t, err)
	requireColumnsEqual(t, cols, tbl.Columns)
}

func TestEncoder_EmptyTable(t *testing.T) {
	cols := []column.Column{column.FromInt32s(nil), column.FromFloat32s(nil)}

	data, stats := encodeColumns(t, cols)
	require.Len(t, data, section.TableHeaderSize+2)
	require.Zero(t, stats.Groups)
	require.Zero(t, stats.BytesPerRow())

	tbl, err := ReadBytes(data)
	require.NoError(t, err)
	require.Zero(t, tbl.RowCount)
	require.Len(t, tbl.Columns, 2)
	require.Equal(t, format.ValueFloat32, tbl.Columns[1].Kind())

	legacy, _ := encodeColumns(t, cols, WithLegacyLayout())
	require.Equal(t, []byte{0, 0, 0, 0, 2, 0, 0, 0}, legacy)
}

func TestEncoder_ConfigurationErrors(t *testing.T) {
	_, err := NewEncoder(WithMaxRowGroupSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidRowGroupSize)

	_, err = NewEncoder(WithMaxRowGroupSize(-3))
	require.ErrorIs(t, err, errs.ErrInvalidRowGroupSize)

	_, err = NewEncoder(WithPreferredKinds(format.RepresentationKind(99)))
	require.ErrorIs(t, err, errs.ErrUnknownRepresentation)

	_, err = NewEncoder(WithCompression(format.CompressionType(42)))
	require.ErrorIs(t, err, errs.ErrUnknownCompression)

	_, err = NewEncoder(WithLegacyLayout(), WithCompression(format.CompressionZstd))
	require.ErrorIs(t, err, errs.ErrUnknownCompression)

	_, err = NewEncoder(WithLegacyLayout(), WithChecksum(true))
	require.ErrorIs(t, err, errs.ErrInvalidHeader)

	enc, err := NewEncoder(WithPreferredKinds(format.KindDirect))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = enc.Encode(&buf, 0, nil)
	require.ErrorIs(t, err, errs.ErrInvalidColumnCount)

	_, err = enc.EncodeColumns(&buf, fixtureColumns())
	require.ErrorIs(t, err, errs.ErrInvalidColumnCount)

	enc, err = NewEncoder()
	require.NoError(t, err)

	_, err = enc.EncodeColumns(&buf, []column.Column{column.FromInt32s([]int32{1}), column.FromInt32s([]int32{1, 2})})
	require.ErrorIs(t, err, errs.ErrColumnLengthMismatch)

	_, err = enc.Encode(&buf, 5, []ColumnSource{NewSliceSource(column.FromInt32s([]int32{1, 2}))})
	require.ErrorIs(t, err, errs.ErrColumnLengthMismatch)

	_, err = enc.Encode(&buf, -1, []ColumnSource{NewSliceSource(column.FromInt32s(nil))})
	require.ErrorIs(t, err, errs.ErrInvalidRowCount)
}

// fakeSource returns columns produced by next, so tests can misbehave on purpose.
type fakeSource struct {
	kind format.ValueKind
	next func(n int) (column.Column, error)
}

func (s fakeSource) Kind() format.ValueKind            { return s.kind }
func (s fakeSource) Next(n int) (column.Column, error) { return s.next(n) }

func TestEncoder_SourceErrors(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	boom := errors.New("boom")
	tests := []struct {
		name string
		src  ColumnSource
		want error
	}{
		{"source failure", fakeSource{format.ValueInt32, func(int) (column.Column, error) { return column.Column{}, boom }}, boom},
		{"short column", fakeSource{format.ValueInt32, func(n int) (column.Column, error) {
			return column.FromInt32s(make([]int32, n-1)), nil
		}}, errs.ErrColumnLengthMismatch},
		{"wrong kind", fakeSource{format.ValueInt32, func(n int) (column.Column, error) {
			return column.FromFloat32s(make([]float32, n)), nil
		}}, errs.ErrMixedValueKinds},
		{"no kind", fakeSource{0, nil}, errs.ErrMixedValueKinds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := enc.Encode(&buf, 10, []ColumnSource{tt.src})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--

	return len(p), nil
}

func TestEncoder_WriterErrors(t *testing.T) {
	enc, err := NewEncoder(WithMaxRowGroupSize(1))
	require.NoError(t, err)

	_, err = enc.EncodeColumns(&failingWriter{after: 0}, fixtureColumns())
	require.ErrorContains(t, err, "table header")

	_, err = enc.EncodeColumns(&failingWriter{after: 2}, fixtureColumns())
	require.ErrorContains(t, err, "row group 1")
}

func TestDecoder_TruncationNeverPanics(t *testing.T) {
	cols := mixedColumns(300)

	layouts := map[string][]Option{
		"default":  {WithMaxRowGroupSize(128), WithPreferredKinds(mixedPreferred...)},
		"checksum": {WithMaxRowGroupSize(128), WithPreferredKinds(mixedPreferred...), WithChecksum(true), WithCompression(format.CompressionSnappy)},
		"legacy":   {WithMaxRowGroupSize(128), WithPreferredKinds(mixedPreferred...), WithLegacyLayout()},
	}

	for name, opts := range layouts {
		t.Run(name, func(t *testing.T) {
			data, _ := encodeColumns(t, cols, opts...)

			decOpts := []Option{WithMaxRowGroupSize(128)}
			if name == "legacy" {
				decOpts = append(decOpts, WithLegacyLayout(), WithSchema(
					format.ValueInt32, format.ValueInt32, format.ValueFloat32, format.ValueInt32, format.ValueInt32))
			}

			for cut := range len(data) {
				_, err := ReadBytes(data[:cut], decOpts...)
				require.Error(t, err, "cut at %d of %d", cut, len(data))
			}

			tbl, err := ReadBytes(data, decOpts...)
			require.NoError(t, err)
			requireColumnsEqual(t, cols, tbl.Columns)
		})
	}
}

func TestDecoder_ChecksumMismatch(t *testing.T) {
	data, _ := encodeColumns(t, fixtureColumns(), WithChecksum(true))

	// Flip the last byte, which belongs to the last payload.
	data[len(data)-1] ^= 0x01
	_, err := ReadBytes(data)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestDecoder_Corruption(t *testing.T) {
	valid, _ := encodeColumns(t, fixtureColumns(), WithMaxRowGroupSize(2))
	groupOff := section.TableHeaderSize + 2

	tests := []struct {
		name   string
		mutate func(data []byte) []byte
		want   error
	}{
		{"trailing garbage", func(data []byte) []byte { return append(data, 0) }, errs.ErrCorruptPayload},
		{"zero group rows", func(data []byte) []byte { data[groupOff] = 0; return data }, errs.ErrCorruptPayload},
		{"group rows above max", func(data []byte) []byte { data[groupOff] = 3; return data }, errs.ErrCorruptPayload},
		{"unknown representation", func(data []byte) []byte { data[groupOff+4] = 0x7f; return data }, errs.ErrUnknownRepresentation},
		{"bad value kind", func(data []byte) []byte { data[section.TableHeaderSize] = 9; return data }, errs.ErrInvalidHeader},
		{"bad magic", func(data []byte) []byte { data[1] = 0; return data }, errs.ErrInvalidHeader},
		{"huge block length", func(data []byte) []byte { data[groupOff+8] = 0xff; return data }, errs.ErrTruncatedStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := ReadBytes(data)
			require.ErrorIs(t, err, tt.want)
		})
	}

	// Counts read from the file must never size an allocation the data cannot back.
	huge := []byte{
		0x10, 0xc7, 2, 1,
		0xff, 0xff, 0xff, 0x7f, // rowCount
		1, 0, 0, 0,
		0xff, 0xff, 0xff, 0x7f, // maxGroupRows
		1,
		0xff, 0xff, 0xff, 0x7f, // group rows
	}
	oversized := []struct {
		name  string
		data  []byte
		check func(data []byte) error
		want  error
	}{
		{
			name:  "empty legacy table with huge column count",
			data:  []byte{0, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f},
			check: func(data []byte) error { _, err := ReadBytes(data, WithLegacyLayout(), WithSchema(format.ValueInt32)); return err },
			want:  errs.ErrInvalidColumnCount,
		},
		{
			name:  "empty legacy table with trailing bytes",
			data:  []byte{0, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f, 0},
			check: func(data []byte) error { _, err := ReadBytes(data, WithLegacyLayout()); return err },
			want:  errs.ErrCorruptPayload,
		},
		{
			name:  "legacy columns beyond data",
			data:  []byte{1, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f, 1, 4, 0, 0, 0, 1, 0, 0, 0},
			check: func(data []byte) error { _, err := ReadBytes(data, WithLegacyLayout()); return err },
			want:  errs.ErrTruncatedStream,
		},
		{
			name:  "run length group with huge row count",
			data:  append(append([]byte(nil), huge...), 2, 5, 0, 0, 0, 1, 0, 0, 0, 0),
			check: func(data []byte) error { _, err := ReadBytes(data); return err },
			want:  errs.ErrTruncatedStream,
		},
		{
			name:  "bit packed group with huge row count",
			data:  append(append([]byte(nil), huge...), 6, 9, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0),
			check: func(data []byte) error { _, err := ReadBytes(data); return err },
			want:  errs.ErrCorruptPayload,
		},
	}

	for _, tt := range oversized {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.check(tt.data), tt.want)
		})
	}
}

func TestDecoder_EmptyLegacyTable(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f}

	dec, err := NewDecoder(data, WithLegacyLayout())
	require.NoError(t, err)
	require.Equal(t, 0x7fffffff, dec.Header().ColumnCount)
	require.Empty(t, dec.Header().Kinds)

	tbl, err := dec.Decode()
	require.NoError(t, err)
	require.Zero(t, tbl.RowCount)
	require.Empty(t, tbl.Columns)

	legacy, _ := encodeColumns(t, []column.Column{column.FromInt32s(nil), column.FromFloat32s(nil)}, WithLegacyLayout())
	tbl, err = ReadBytes(legacy, WithLegacyLayout(), WithSchema(format.ValueInt32, format.ValueFloat32))
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 2)
	require.Equal(t, format.ValueFloat32, tbl.Columns[1].Kind())
}

func TestDecoder_Schema(t *testing.T) {
	cols := []column.Column{column.FromFloat32s([]float32{1.5, -2.25})}

	legacy, _ := encodeColumns(t, cols, WithLegacyLayout())
	tbl, err := ReadBytes(legacy, WithLegacyLayout(), WithSchema(format.ValueFloat32))
	require.NoError(t, err)
	require.Equal(t, []float32{1.5, -2.25}, tbl.Column(0).Float32s())

	// Without a schema the legacy reader assumes int32 and reinterprets the bits.
	tbl, err = ReadBytes(legacy, WithLegacyLayout())
	require.NoError(t, err)
	require.Equal(t, format.ValueInt32, tbl.Column(0).Kind())
	require.Equal(t, cols[0].Words(), tbl.Column(0).Words())

	_, err = NewDecoder(legacy, WithLegacyLayout(), WithSchema(format.ValueInt32, format.ValueInt32))
	require.ErrorIs(t, err, errs.ErrInvalidColumnCount)

	current, _ := encodeColumns(t, cols)
	_, err = NewDecoder(current, WithSchema(format.ValueInt32))
	require.ErrorIs(t, err, errs.ErrMixedValueKinds)

	_, err = NewDecoder(current, WithSchema(format.ValueKind(7)))
	require.ErrorIs(t, err, errs.ErrInvalidHeader)
}

func TestDecoder_RowGroupsStopsEarly(t *testing.T) {
	data, _ := encodeColumns(t, mixedColumns(1000), WithMaxRowGroupSize(100))

	dec, err := NewDecoder(data)
	require.NoError(t, err)

	seen := 0
	for group, err := range dec.RowGroups() {
		require.NoError(t, err)
		require.Equal(t, seen, group.Index)
		require.Equal(t, 100, group.Rows)
		seen++
		if seen == 3 {
			break
		}
	}
	require.Equal(t, 3, seen)
}

func TestWriteFileAndReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.tbl")
	cols := mixedColumns(777)

	enc, err := NewEncoder(WithPreferredKinds(mixedPreferred...), WithChecksum(true))
	require.NoError(t, err)

	sources := make([]ColumnSource, len(cols))
	for i, col := range cols {
		sources[i] = NewSliceSource(col)
	}

	stats, err := enc.WriteFile(path, 777, sources)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, stats.BytesWritten, info.Size())

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	requireColumnsEqual(t, cols, tbl.Columns)

	// The sources are exhausted now, so a second write fails and leaves no file.
	failed := filepath.Join(dir, "failed.tbl")
	_, err = enc.WriteFile(failed, 777, sources)
	require.ErrorIs(t, err, errs.ErrColumnLengthMismatch)
	_, err = os.Stat(failed)
	require.True(t, os.IsNotExist(err))

	_, err = ReadFile(filepath.Join(dir, "missing.tbl"))
	require.Error(t, err)
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(column.FromInt32s([]int32{1, 2, 3, 4, 5}))
	require.Equal(t, format.ValueInt32, src.Kind())

	first, err := src.Next(2)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2}, first.Int32s())
	require.Equal(t, 3, src.Remaining())

	rest, err := src.Next(3)
	require.NoError(t, err)
	require.Equal(t, []int32{3, 4, 5}, rest.Int32s())

	_, err = src.Next(1)
	require.ErrorIs(t, err, errs.ErrColumnLengthMismatch)
}

func BenchmarkEncoder_Encode(b *testing.B) {
	cols := mixedColumns(50000)
	enc, err := NewEncoder(WithPreferredKinds(mixedPreferred...))
	require.NoError(b, err)

	var buf bytes.Buffer
	for b.Loop() {
		buf.Reset()
		_, _ = enc.EncodeColumns(&buf, cols)
	}
}

package table

import (
	"fmt"

	"github.com/arloliu/coltab/encoding"
	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/options"
	"github.com/arloliu/coltab/section"
)

// DefaultMaxRowGroupSize is the row group size used when none is configured.
// Readers of the legacy layout must use the same size as the writer.
const DefaultMaxRowGroupSize = 1024

// Config holds the settings shared by Encoder and Decoder.
//
// Options that only make sense on one side are ignored by the other: the
// decoder ignores preferred kinds, adaptive selection, compression and
// checksums because the default layout records what it needs, and the encoder
// ignores the schema because sources carry their value kinds.
type Config struct {
	maxGroupRows int
	preferred    []format.RepresentationKind
	adaptive     []format.RepresentationKind
	compression  format.CompressionType
	checksum     bool
	legacy       bool
	concurrency  int
	schema       []format.ValueKind
}

func newConfig() *Config {
	return &Config{
		maxGroupRows: DefaultMaxRowGroupSize,
		compression:  format.CompressionNone,
		concurrency:  1,
	}
}

// Option represents a functional option for configuring an Encoder or Decoder.
type Option = options.Option[*Config]

// WithMaxRowGroupSize sets the maximum number of rows per row group.
//
// For the legacy layout the decoder needs the writer's value, since it is not stored.
func WithMaxRowGroupSize(rows int) Option {
	return options.New(func(c *Config) error {
		if rows <= 0 || uint64(rows) > section.MaxCount {
			return fmt.Errorf("%w: %d", errs.ErrInvalidRowGroupSize, rows)
		}
		c.maxGroupRows = rows

		return nil
	})
}

// WithPreferredKinds sets the preferred representation of each column, in
// column order. Columns fall back to Direct when their preferred codec refuses
// a group. Without this option every column prefers Direct.
func WithPreferredKinds(kinds ...format.RepresentationKind) Option {
	return options.New(func(c *Config) error {
		for _, kind := range kinds {
			if _, err := encoding.GetCodec(kind); err != nil {
				return err
			}
		}
		c.preferred = append([]format.RepresentationKind(nil), kinds...)

		return nil
	})
}

// WithAdaptiveSelection makes the encoder try every candidate per column per
// group and keep the smallest payload. Without candidates all built-in kinds
// are tried. Adaptive selection overrides WithPreferredKinds.
func WithAdaptiveSelection(candidates ...format.RepresentationKind) Option {
	return options.New(func(c *Config) error {
		if len(candidates) == 0 {
			candidates = []format.RepresentationKind{
				format.KindConstant,
				format.KindRunLength,
				format.KindDeltaSignedByte,
				format.KindDictionaryOneByte,
				format.KindBitPacked,
				format.KindDirect,
			}
		}
		for _, kind := range candidates {
			if _, err := encoding.GetCodec(kind); err != nil {
				return err
			}
		}
		c.adaptive = append([]format.RepresentationKind(nil), candidates...)

		return nil
	})
}

// WithCompression compresses every stored payload with the given algorithm.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *Config) error {
		switch compression {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2,
			format.CompressionLZ4, format.CompressionSnappy:
			c.compression = compression
			return nil
		default:
			return fmt.Errorf("%w: %s", errs.ErrUnknownCompression, compression)
		}
	})
}

// WithChecksum enables or disables the per-row-group xxHash64 of stored payloads.
func WithChecksum(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.checksum = enabled
	})
}

// WithLegacyLayout selects the legacy layout: an 8-byte header and row groups
// without group sizes, value kinds, compression or checksums.
func WithLegacyLayout() Option {
	return options.NoError(func(c *Config) {
		c.legacy = true
	})
}

// WithConcurrency sets how many columns of a row group are encoded or decoded
// at once. Output is identical for every value. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return options.NoError(func(c *Config) {
		c.concurrency = max(1, n)
	})
}

// WithSchema sets the value kind of each column for decoding the legacy layout,
// which does not store them. Without it every column decodes as Int32. For the
// default layout the schema, when given, must match the stored kinds.
func WithSchema(kinds ...format.ValueKind) Option {
	return options.New(func(c *Config) error {
		for i, kind := range kinds {
			if !kind.IsValid() {
				return fmt.Errorf("%w: column %d has value kind %d", errs.ErrInvalidHeader, i, kind)
			}
		}
		c.schema = append([]format.ValueKind(nil), kinds...)

		return nil
	})
}

func (c *Config) validateEncoder() error {
	if c.legacy && c.compression != format.CompressionNone {
		return fmt.Errorf("%w: legacy layout stores uncompressed payloads, got %s", errs.ErrUnknownCompression, c.compression)
	}

	if c.legacy && c.checksum {
		return fmt.Errorf("%w: legacy layout has no checksums", errs.ErrInvalidHeader)
	}

	return nil
}

func (c *Config) preferredKind(col int) format.RepresentationKind {
	if col < len(c.preferred) {
		return c.preferred[col]
	}

	return format.KindDirect
}

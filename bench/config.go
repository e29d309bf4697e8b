package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/coltab/errs"
	"github.com/arloliu/coltab/format"
)

// Mode selects how the benchmark picks column representations.
type Mode string

const (
	// ModeDirect stores every column directly.
	ModeDirect Mode = "direct"
	// ModePreferred uses each table's preferred representations with Direct fallback.
	ModePreferred Mode = "preferred"
	// ModeAdaptive keeps the smallest representation per block.
	ModeAdaptive Mode = "adaptive"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeDirect, ModePreferred, ModeAdaptive:
		return true
	default:
		return false
	}
}

// Config describes a benchmark matrix. Every combination of users row count,
// row group size and mode is one run encoding a users and a purchases table.
type Config struct {
	Seed          uint64                 `yaml:"seed"`
	UsersRows     []int                  `yaml:"users_rows"`
	PurchasesRows int                    `yaml:"purchases_rows"`
	GroupSizes    []int                  `yaml:"group_sizes"`
	Modes         []Mode                 `yaml:"modes"`
	Legacy        bool                   `yaml:"legacy"`
	Compression   format.CompressionType `yaml:"compression"`
	Checksum      bool                   `yaml:"checksum"`
	Concurrency   int                    `yaml:"concurrency"`
	// OutputDir keeps the encoded tables when set. Otherwise only their sizes are measured.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// DefaultConfig returns the classic matrix: 10, 100 and 1000 users against a
// million purchases, groups of 50 and 1000 rows, direct and preferred
// representations, all in the legacy layout.
func DefaultConfig() Config {
	return Config{
		Seed:          1,
		UsersRows:     []int{10, 100, 1000},
		PurchasesRows: 1_000_000,
		GroupSizes:    []int{50, 1000},
		Modes:         []Mode{ModeDirect, ModePreferred},
		Legacy:        true,
		Compression:   format.CompressionNone,
		Concurrency:   1,
	}
}

// ParseConfig parses a YAML benchmark configuration. Fields absent from data
// keep their DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("bench: invalid YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML benchmark configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("bench: cannot read %s: %w", path, err)
	}

	return ParseConfig(data)
}

// Validate checks that every run of the matrix can be encoded.
func (c Config) Validate() error {
	if len(c.UsersRows) == 0 {
		return fmt.Errorf("%w: users_rows is empty", errs.ErrInvalidRowCount)
	}

	for _, n := range c.UsersRows {
		if n < 1 {
			return fmt.Errorf("%w: users_rows entry %d", errs.ErrInvalidRowCount, n)
		}
	}

	if c.PurchasesRows < 0 {
		return fmt.Errorf("%w: purchases_rows %d", errs.ErrInvalidRowCount, c.PurchasesRows)
	}

	if len(c.GroupSizes) == 0 {
		return fmt.Errorf("%w: group_sizes is empty", errs.ErrInvalidRowGroupSize)
	}

	for _, n := range c.GroupSizes {
		if n < 1 {
			return fmt.Errorf("%w: group_sizes entry %d", errs.ErrInvalidRowGroupSize, n)
		}
	}

	if len(c.Modes) == 0 {
		return fmt.Errorf("%w: modes is empty", errs.ErrUnknownMethod)
	}

	for _, m := range c.Modes {
		if !m.IsValid() {
			return fmt.Errorf("%w: mode %q", errs.ErrUnknownMethod, m)
		}
	}

	if c.Legacy && c.Compression != format.CompressionNone {
		return fmt.Errorf("%w: legacy layout cannot store %s compression", errs.ErrUnknownCompression, c.Compression)
	}

	if c.Legacy && c.Checksum {
		return fmt.Errorf("%w: legacy layout has no checksums", errs.ErrInvalidHeader)
	}

	return nil
}

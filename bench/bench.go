// Package bench measures how many bytes per row the table format spends on the
// synthetic users and purchases tables under different representation choices.
package bench

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/arloliu/coltab/gen"
	"github.com/arloliu/coltab/table"
)

// TableResult is the outcome of encoding one table.
type TableResult struct {
	Name  string
	Path  string
	Stats table.Stats
}

// BytesPerRow returns the encoded file size divided by the row count.
func (r TableResult) BytesPerRow() float64 {
	return r.Stats.BytesPerRow()
}

// Result is the outcome of one run of the matrix.
type Result struct {
	UsersRows int
	GroupSize int
	Mode      Mode
	Users     TableResult
	Purchases TableResult
}

// Run executes every run of cfg in order and returns their results.
//
// Cancellation is checked between tables; the results completed so far are
// returned together with the context error.
func Run(ctx context.Context, cfg Config, logger log.Logger) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	results := make([]Result, 0, len(cfg.UsersRows)*len(cfg.GroupSizes)*len(cfg.Modes))
	for _, users := range cfg.UsersRows {
		for _, group := range cfg.GroupSizes {
			for _, mode := range cfg.Modes {
				res := Result{UsersRows: users, GroupSize: group, Mode: mode}

				if err := ctx.Err(); err != nil {
					return results, err
				}

				var err error
				res.Users, err = runTable(cfg, gen.Users(cfg.Seed), users, users, group, mode)
				if err != nil {
					return results, err
				}

				if err := ctx.Err(); err != nil {
					return results, err
				}

				purchases, err := gen.Purchases(users, cfg.Seed+1)
				if err != nil {
					return results, err
				}

				res.Purchases, err = runTable(cfg, purchases, cfg.PurchasesRows, users, group, mode)
				if err != nil {
					return results, err
				}

				level.Info(logger).Log("msg", "benchmark run",
					"users", users, "group_size", group, "mode", mode,
					"users_bytes_per_row", res.Users.BytesPerRow(),
					"purchases_bytes_per_row", res.Purchases.BytesPerRow(),
					"users_space_savings", res.Users.Stats.Compression.SpaceSavings(),
					"purchases_space_savings", res.Purchases.Stats.Compression.SpaceSavings(),
					"fallbacks", res.Users.Stats.Fallbacks+res.Purchases.Stats.Fallbacks)

				results = append(results, res)
			}
		}
	}

	return results, nil
}

// encoderOptions returns the table options of one run.
func encoderOptions(cfg Config, t gen.Table, group int, mode Mode) []table.Option {
	opts := []table.Option{
		table.WithMaxRowGroupSize(group),
		table.WithConcurrency(cfg.Concurrency),
	}

	switch mode {
	case ModePreferred:
		opts = append(opts, table.WithPreferredKinds(t.Preferred...))
	case ModeAdaptive:
		opts = append(opts, table.WithAdaptiveSelection())
	}

	if cfg.Legacy {
		return append(opts, table.WithLegacyLayout())
	}

	return append(opts, table.WithCompression(cfg.Compression), table.WithChecksum(cfg.Checksum))
}

func runTable(cfg Config, t gen.Table, rows, users, group int, mode Mode) (TableResult, error) {
	res := TableResult{Name: t.Name}

	enc, err := table.NewEncoder(encoderOptions(cfg, t, group, mode)...)
	if err != nil {
		return res, err
	}

	if cfg.OutputDir == "" {
		res.Stats, err = enc.Encode(io.Discard, rows, t.Sources())
	} else {
		res.Path = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_u%d_g%d_%s.tbl", t.Name, users, group, mode))
		res.Stats, err = enc.WriteFile(res.Path, rows, t.Sources())
	}
	if err != nil {
		return res, fmt.Errorf("bench: encode %s: %w", t.Name, err)
	}

	return res, nil
}

// Command coltab encodes and decodes single-block containers, inspects table
// files and runs the bytes-per-row benchmark.
//
//	coltab encode <in> <out> --method {constant|rle|rle8|bit|auto}
//	coltab decode <in> <out>
//	coltab inspect <table> [--legacy --group-size N --schema int32,float32,...]
//	coltab bench [--config bench.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var errUsage = errors.New("usage")

const usage = `usage: coltab <command> [arguments]

commands:
  encode <in> <out> --method {constant|rle|rle8|bit|auto}
  decode <in> <out>
  inspect <table> [--legacy] [--group-size N] [--schema int32,float32,...]
  bench [--config bench.yaml]
`

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		level.Error(logger).Log("msg", "command failed", "err", err)
		cancel()
		os.Exit(1) //nolint: gocritic
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger log.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode":
		return encodeCmd(rest, stdout)
	case "decode":
		return decodeCmd(rest, stdout)
	case "inspect":
		return inspectCmd(rest, stdout)
	case "bench":
		return benchCmd(ctx, rest, stdout, logger)
	case "help", "-h", "--help":
		_, err := fmt.Fprint(stdout, usage)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// parseArgs parses fs flags anywhere in args and returns the positional
// arguments in order, so flags may follow them.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errUsage, fs.Name(), err)
		}

		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}

		positional = append(positional, args[0])
		args = args[1:]
	}
}

func expectArgs(fs *flag.FlagSet, positional []string, names ...string) error {
	if len(positional) != len(names) {
		return fmt.Errorf("%w: %s needs %d arguments %v, got %d", errUsage, fs.Name(), len(names), names, len(positional))
	}

	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"

	"github.com/arloliu/coltab/bench"
	"github.com/arloliu/coltab/container"
	"github.com/arloliu/coltab/format"
	"github.com/arloliu/coltab/internal/fsutil"
	"github.com/arloliu/coltab/section"
	"github.com/arloliu/coltab/table"
)

const methodAuto = "auto"

func encodeCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	method := fs.String("method", "", "encoding method: constant, rle, rle8, bit or auto")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if err := expectArgs(fs, positional, "input", "output"); err != nil {
		return err
	}

	if *method == "" {
		return fmt.Errorf("%w: encode needs --method", errUsage)
	}

	data, err := os.ReadFile(positional[0])
	if err != nil {
		return err
	}

	var (
		encoded []byte
		typ     format.ContainerType
	)
	if *method == methodAuto {
		encoded, typ, err = container.EncodeAuto(data)
	} else {
		typ, err = format.ParseContainerType(*method)
		if err == nil {
			encoded, err = container.Encode(data, typ)
		}
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", positional[0], err)
	}

	if err := writeOutput(positional[1], encoded); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "File encoded successfully using %s encoding.\n", typ)
	fmt.Fprintf(stdout, "Original size: %d bytes\n", len(data))
	fmt.Fprintf(stdout, "Encoded size: %d bytes\n", len(encoded))
	fmt.Fprintf(stdout, "Compression ratio: %.2fx\n", float64(len(data))/float64(len(encoded)))

	return nil
}

func decodeCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if err := expectArgs(fs, positional, "input", "output"); err != nil {
		return err
	}

	data, err := os.ReadFile(positional[0])
	if err != nil {
		return err
	}

	decoded, err := container.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", positional[0], err)
	}

	if err := writeOutput(positional[1], decoded); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "File decoded successfully. Output size: %d bytes\n", len(decoded))

	return nil
}

func writeOutput(path string, data []byte) error {
	return fsutil.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func inspectCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	legacy := fs.Bool("legacy", false, "read the legacy layout")
	groupSize := fs.Int("group-size", table.DefaultMaxRowGroupSize, "row group size of a legacy table")
	schema := fs.String("schema", "", "comma separated column value kinds")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if err := expectArgs(fs, positional, "table"); err != nil {
		return err
	}

	opts, err := inspectOptions(*legacy, *groupSize, *schema)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(positional[0])
	if err != nil {
		return err
	}

	dec, err := table.NewDecoder(data, opts...)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", positional[0], err)
	}

	printHeader(stdout, dec.Header())

	for group, err := range dec.RowGroups() {
		if err != nil {
			return fmt.Errorf("inspect %s: %w", positional[0], err)
		}

		fmt.Fprintf(stdout, "group %d: %d rows\n", group.Index, group.Rows)
		for i, b := range group.Blocks {
			fmt.Fprintf(stdout, "  column %d: %s, %d bytes\n", i, b.Kind, b.Length)
		}
	}

	return nil
}

func inspectOptions(legacy bool, groupSize int, schema string) ([]table.Option, error) {
	var opts []table.Option
	if legacy {
		opts = append(opts, table.WithLegacyLayout(), table.WithMaxRowGroupSize(groupSize))
	}

	if schema == "" {
		return opts, nil
	}

	names := strings.Split(schema, ",")
	kinds := make([]format.ValueKind, len(names))
	for i, name := range names {
		kind, err := format.ParseValueKind(name)
		if err != nil {
			return nil, err
		}
		kinds[i] = kind
	}

	return append(opts, table.WithSchema(kinds...)), nil
}

func printHeader(w io.Writer, h table.Header) {
	layout := "row-group"
	if h.Layout == section.LayoutLegacy {
		layout = "legacy"
	}

	kinds := make([]string, len(h.Kinds))
	for i, k := range h.Kinds {
		kinds[i] = k.String()
	}

	fmt.Fprintf(w, "layout: %s\n", layout)
	fmt.Fprintf(w, "rows: %d\n", h.RowCount)
	fmt.Fprintf(w, "columns: %d (%s)\n", h.ColumnCount, strings.Join(kinds, ", "))
	fmt.Fprintf(w, "max group rows: %d\n", h.MaxGroupRows)
	fmt.Fprintf(w, "compression: %s\n", h.Compression)
	fmt.Fprintf(w, "checksum: %t\n", h.Checksum)
}

func benchCmd(ctx context.Context, args []string, stdout io.Writer, logger log.Logger) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML benchmark configuration")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if err := expectArgs(fs, positional); err != nil {
		return err
	}

	cfg := bench.DefaultConfig()
	if *configPath != "" {
		cfg, err = bench.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}

	results, err := bench.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return bench.WriteReport(stdout, results)
}

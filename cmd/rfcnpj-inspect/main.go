// Command rfcnpj-inspect prints the schema, row count and first rows of a
// parquet file produced by rfcnpj-parquet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/abriciof/rfcnpj-parquet/internal/columnar"
	"github.com/abriciof/rfcnpj-parquet/internal/pipeline"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "rfcnpj-inspect:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("rfcnpj-inspect", pflag.ContinueOnError)
	head := fs.IntP("head", "n", 5, "number of rows to print")
	width := fs.Int("width", 40, "truncate cell values to this many characters (0 keeps them whole)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: rfcnpj-inspect <file.parquet> [--head N]")
	}
	path := fs.Arg(0)

	t, err := columnar.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "file:    %s\n", path)
	fmt.Fprintf(w, "rows:    %d\n", t.Len())
	fmt.Fprintf(w, "columns: %d\n", t.Width())
	for i, c := range t.Columns {
		fmt.Fprintf(w, "  %2d  %s  string\n", i, c)
	}

	if m, err := pipeline.ReadManifest(pipeline.ManifestPath(path)); err == nil {
		fmt.Fprintf(w, "sources: %d file(s), written %s\n", len(m.Sources), m.WrittenAt.Format("2006-01-02 15:04:05Z07:00"))
		if m.Mismatch != "" {
			fmt.Fprintf(w, "warning: %s\n", m.Mismatch)
		}
	}

	rows := t.Head(*head)
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = truncate(v, *width)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

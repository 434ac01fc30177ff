// Package pipeline runs the assemble-and-write cycle for every dataset type of
// the catalog, recording one outcome per type. A failing type never stops the
// others.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
	"github.com/abriciof/rfcnpj-parquet/internal/columnar"
	"github.com/abriciof/rfcnpj-parquet/internal/dataset"
	"github.com/abriciof/rfcnpj-parquet/internal/metrics"
	"github.com/abriciof/rfcnpj-parquet/internal/scan"
	"github.com/abriciof/rfcnpj-parquet/internal/table"
)

type Assembler interface {
	Assemble(ctx context.Context, typeName, dir string) (*dataset.Dataset, error)
}

// WriteFunc persists a table; columnar.WriteFile with bound options in
// production.
type WriteFunc func(path string, t *table.Table) error

// Publisher receives every dataset that was written successfully.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, ds *dataset.Dataset, parquetPath string) error
}

type Driver struct {
	Catalog    *catalog.Catalog
	Assembler  Assembler
	Write      WriteFunc
	Publishers []Publisher
	Metrics    metrics.Recorder
	// Manifest enables the JSON sidecar next to every parquet file.
	Manifest bool
}

func NewDriver(cat *catalog.Catalog, asm Assembler, opts ...columnar.Option) *Driver {
	return &Driver{
		Catalog:   cat,
		Assembler: asm,
		Write: func(path string, t *table.Table) error {
			return columnar.WriteFile(path, t, opts...)
		},
		Metrics:  metrics.Nop{},
		Manifest: true,
	}
}

// OutputPath is where the parquet file of a dataset type goes.
func OutputPath(outputDir string, t catalog.DatasetType) string {
	return filepath.Join(outputDir, string(t)+"_tratado"+columnar.Ext)
}

// Run processes every catalog entry in order. It never returns an error:
// per-type failures are in the returned outcomes.
func (d *Driver) Run(ctx context.Context, dir, outputDir string) *Outcomes {
	out := newOutcomes()
	rec := d.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		slog.Error("cannot create output directory", "dir", outputDir, "error", err)
	}

	for _, e := range d.Catalog.Entries() {
		start := time.Now()
		o := d.runOne(ctx, e.Type, dir, outputDir)
		o.Duration = time.Since(start)
		out.add(o)

		rec.DatasetDone(string(o.Type), string(o.Status), o.Rows, o.Duration)
		rec.FilesFailed(string(o.Type), len(o.FailedFiles))

		switch o.Status {
		case StatusWritten:
			slog.Info("dataset written", "dataset", o.Type, "rows", o.Rows, "path", o.Path, "named", o.Named, "duration", o.Duration.String())
		case StatusEmpty:
			slog.Info("dataset empty, skipped", "dataset", o.Type, "failed_files", len(o.FailedFiles))
		default:
			slog.Error("dataset failed", "dataset", o.Type, "state", o.State, "error", o.Err)
		}
	}
	return out
}

func (d *Driver) runOne(ctx context.Context, t catalog.DatasetType, dir, outputDir string) (o Outcome) {
	o = Outcome{Type: t, State: StatePending}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dataset panicked", "dataset", t, "panic", r, "stack", string(debug.Stack()))
			o.fail(StateErrored, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		o.fail(StateErrored, err)
		return o
	}

	o.advance(StateClassifying)
	ds, err := d.Assembler.Assemble(ctx, string(t), dir)
	if err != nil {
		if !errors.Is(err, scan.ErrDirectoryNotFound) && !errors.Is(err, catalog.ErrUnknownDatasetType) {
			o.advance(StateLoading)
		}
		o.fail(StateErrored, err)
		return o
	}
	o.advance(StateLoading)
	for _, f := range ds.Failures {
		o.FailedFiles = append(o.FailedFiles, FileFailure{File: filepath.Base(f.File), Error: f.Err.Error()})
	}
	o.Files = len(ds.Sources)
	if ds.Mismatch != nil {
		o.Warnings = append(o.Warnings, ds.Mismatch.Error())
	}

	if ds.Empty() {
		o.advance(StateEmpty)
		o.Status = StatusEmpty
		return o
	}
	o.advance(StateAssembled)
	o.Named = ds.Named
	o.Columns = ds.Width()

	path := OutputPath(outputDir, t)
	if err := d.Write(path, &ds.Table); err != nil {
		o.fail(StateWriteFailed, err)
		return o
	}
	o.advance(StateWritten)
	o.Status = StatusWritten
	o.Rows = int64(ds.Len())
	o.Path = path

	if d.Manifest {
		if err := writeManifest(ManifestPath(path), ds, o); err != nil {
			slog.Warn("manifest not written", "dataset", t, "error", err)
			o.Warnings = append(o.Warnings, "manifest: "+err.Error())
		}
	}

	for _, p := range d.Publishers {
		if err := p.Publish(ctx, ds, path); err != nil {
			slog.Error("publish failed", "dataset", t, "publisher", p.Name(), "error", err)
			o.PublishErrors = append(o.PublishErrors, p.Name()+": "+err.Error())
			continue
		}
		o.Published = append(o.Published, p.Name())
	}
	return o
}

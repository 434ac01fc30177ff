package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
	"github.com/abriciof/rfcnpj-parquet/internal/loaders"
	"github.com/abriciof/rfcnpj-parquet/internal/scan"
	"github.com/abriciof/rfcnpj-parquet/internal/table"
)

// LoadFunc loads one classified file.
type LoadFunc func(path string) (*loaders.Loaded, error)

type Assembler struct {
	Catalog *catalog.Catalog
	// Workers bounds concurrent file loads within one dataset type.
	Workers int
	Load    LoadFunc
}

func NewAssembler(cat *catalog.Catalog, workers int) *Assembler {
	if workers <= 0 {
		workers = 1
	}
	return &Assembler{Catalog: cat, Workers: workers, Load: loaders.LoadFile}
}

type loadResult struct {
	loaded *loaders.Loaded
	err    error
}

// Assemble classifies the files of dir for typeName, loads them and stacks
// their rows in listing order. A type with no files, or whose files all
// failed, yields an empty dataset and no error.
func (a *Assembler) Assemble(ctx context.Context, typeName, dir string) (*Dataset, error) {
	entry, err := a.Catalog.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{Type: entry.Type}

	files, err := scan.Classify(a.Catalog, dir, typeName)
	if errors.Is(err, scan.ErrNoMatchingFiles) {
		slog.Info("no files for dataset", "dataset", entry.Type, "token", entry.Token, "dir", dir)
		return ds, nil
	}
	if err != nil {
		return nil, err
	}
	slog.Info("loading dataset files", "dataset", entry.Type, "files", len(files), "workers", a.Workers)

	results := make([]loadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Workers)
	for i, fp := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					results[i] = loadResult{err: fmt.Errorf("panic: %v", r)}
				}
			}()
			l, err := a.Load(fp)
			results[i] = loadResult{loaded: l, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var loaded []*loaders.Loaded
	for i, r := range results {
		if r.err != nil {
			fre := asFileReadError(files[i], r.err)
			slog.Warn("skipping unreadable file", "dataset", entry.Type, "file", filepath.Base(files[i]), "error", fre.Err)
			ds.Failures = append(ds.Failures, fre)
			continue
		}
		loaded = append(loaded, r.loaded)
	}
	if len(loaded) == 0 {
		slog.Warn("no file could be loaded", "dataset", entry.Type, "failed", len(ds.Failures))
		return ds, nil
	}

	width, total := 0, 0
	for _, l := range loaded {
		width = max(width, l.Table.Width())
		total += l.Table.Len()
	}

	ds.Rows = make([][]string, 0, total)
	for _, l := range loaded {
		for _, row := range l.Table.Rows {
			if len(row) < width {
				padded := make([]string, width)
				copy(padded, row)
				row = padded
			}
			ds.Rows = append(ds.Rows, row)
		}
		ds.Sources = append(ds.Sources, SourceFile{
			Path:     l.File,
			Rows:     l.Table.Len(),
			Width:    l.Table.Width(),
			Checksum: l.Checksum,
		})
	}

	if len(entry.Columns) == width {
		ds.Columns = append([]string(nil), entry.Columns...)
		ds.Named = true
	} else {
		ds.Columns = table.Positional(width)
		ds.Mismatch = &ColumnCountMismatch{Type: entry.Type, Expected: len(entry.Columns), Found: width}
		slog.Warn("column count mismatch, keeping positional names",
			"dataset", entry.Type, "expected", len(entry.Columns), "found", width)
	}

	slog.Info("dataset assembled",
		"dataset", entry.Type,
		"rows", ds.Len(),
		"columns", width,
		"files", len(ds.Sources),
		"failed_files", len(ds.Failures),
		"named", ds.Named,
	)
	return ds, nil
}

func asFileReadError(path string, err error) *loaders.FileReadError {
	var fre *loaders.FileReadError
	if errors.As(err, &fre) {
		return fre
	}
	return &loaders.FileReadError{File: path, Err: err}
}

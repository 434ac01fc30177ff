// Package extract unpacks downloaded archives into the month's extracted
// directory.
package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

var ErrUnsafePath = errors.New("zip entry escapes destination")

type Extractor struct {
	Workers       int
	EnableExtract bool
}

func NewExtractor(workers int, enable bool) *Extractor {
	if workers <= 0 {
		workers = 2
	}
	return &Extractor{Workers: workers, EnableExtract: enable}
}

// ExtractAll unpacks every archive into destDir, overwriting existing files.
func (e *Extractor) ExtractAll(ctx context.Context, zipFiles []string, destDir string) error {
	if !e.EnableExtract {
		slog.Info("extract disabled by config")
		return nil
	}
	slog.Info("extract stage started", "files", len(zipFiles), "workers", e.Workers, "dest_dir", destDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for _, zf := range zipFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := extractOne(zf, destDir)
			if err != nil {
				return fmt.Errorf("extract %s: %w", filepath.Base(zf), err)
			}
			slog.Debug("archive extracted", "file", filepath.Base(zf), "entries", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("extract stage completed", "files", len(zipFiles))
	return nil
}

func extractOne(zipPath, destDir string) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return 0, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return 0, err
	}
	defer r.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	n := 0
	for _, f := range r.File {
		fp := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(fp, root) {
			return n, fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fp, 0o755); err != nil {
				return n, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
			return n, err
		}
		if err := writeEntry(f, fp); err != nil {
			return n, fmt.Errorf("%s: %w", f.Name, err)
		}
		n++
	}
	return n, nil
}

func writeEntry(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

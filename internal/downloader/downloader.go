// Package downloader fetches the monthly zip archives selected from a remote
// listing.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
	"github.com/abriciof/rfcnpj-parquet/internal/remote"
)

// FilterWanted keeps the archives whose stem (name without digits and
// extension, e.g. "Empresas" for Empresas3.zip) belongs to a catalog entry.
func FilterWanted(items []remote.Item, cat *catalog.Catalog) []remote.Item {
	stems := make(map[string]bool)
	for _, e := range cat.Entries() {
		if e.Archive != "" {
			stems[strings.ToLower(e.Archive)] = true
		}
	}
	out := make([]remote.Item, 0, len(items))
	for _, it := range items {
		if stems[ArchiveStem(it.Name)] {
			out = append(out, it)
		}
	}
	return out
}

// ArchiveStem lowercases name and drops the .zip extension and any trailing
// part number.
func ArchiveStem(name string) string {
	base := strings.ToLower(filepath.Base(name))
	base = strings.TrimSuffix(base, ".zip")
	return strings.TrimRightFunc(base, unicode.IsDigit)
}

type Downloader struct {
	OutputDir      string
	Workers        int
	EnableDownload bool
	http           *http.Client
}

func NewDownloader(outputDir string, workers int, enable bool) *Downloader {
	if workers <= 0 {
		workers = 4
	}
	return &Downloader{
		OutputDir:      outputDir,
		Workers:        workers,
		EnableDownload: enable,
		// archives reach several GB; no global timeout
		http: &http.Client{Timeout: 0},
	}
}

// LocalPath is where an item is stored.
func (d *Downloader) LocalPath(it remote.Item) string {
	return filepath.Join(d.OutputDir, it.Name)
}

// DownloadAll fetches every item and returns the local paths in input order.
// With downloads disabled it only reports the paths.
func (d *Downloader) DownloadAll(ctx context.Context, items []remote.Item) ([]string, error) {
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = d.LocalPath(it)
	}
	if !d.EnableDownload {
		slog.Info("download disabled by config", "files", len(items))
		return paths, nil
	}
	if err := os.MkdirAll(d.OutputDir, 0o755); err != nil {
		return nil, err
	}

	slog.Info("download stage started", "files", len(items), "workers", d.Workers, "dest_dir", d.OutputDir)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for _, it := range items {
		g.Go(func() error { return d.downloadOne(gctx, it) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (d *Downloader) downloadOne(ctx context.Context, it remote.Item) error {
	dst := d.LocalPath(it)

	if st, err := os.Stat(dst); err == nil {
		if it.Size <= 0 || st.Size() == it.Size {
			slog.Debug("archive already present", "file", it.Name, "size", st.Size())
			return nil
		}
		_ = os.Remove(dst)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, it.URL, nil)
	if err != nil {
		return err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("download %s failed (%d): %s", it.Name, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	start := time.Now()
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("download %s: %w", it.Name, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return err
	}
	slog.Info("archive downloaded", "file", it.Name, "bytes", n, "duration", time.Since(start).String())
	return nil
}

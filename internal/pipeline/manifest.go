package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abriciof/rfcnpj-parquet/internal/dataset"
)

// Manifest is the JSON sidecar written next to each parquet file. Checksums
// are xxh3-64 of the raw source bytes.
type Manifest struct {
	Dataset   string           `json:"dataset"`
	Parquet   string           `json:"parquet"`
	Rows      int64            `json:"rows"`
	Columns   []string         `json:"columns"`
	Named     bool             `json:"named"`
	Mismatch  string           `json:"mismatch,omitempty"`
	Sources   []ManifestSource `json:"sources"`
	Failures  []FileFailure    `json:"failures,omitempty"`
	WrittenAt time.Time        `json:"written_at"`
}

type ManifestSource struct {
	File  string `json:"file"`
	Rows  int    `json:"rows"`
	Width int    `json:"width"`
	XXH3  string `json:"xxh3"`
}

func ManifestPath(parquetPath string) string {
	return strings.TrimSuffix(parquetPath, filepath.Ext(parquetPath)) + ".manifest.json"
}

func buildManifest(ds *dataset.Dataset, o Outcome) Manifest {
	m := Manifest{
		Dataset:   string(ds.Type),
		Parquet:   filepath.Base(o.Path),
		Rows:      int64(ds.Len()),
		Columns:   ds.Columns,
		Named:     ds.Named,
		Failures:  o.FailedFiles,
		WrittenAt: time.Now().UTC(),
	}
	if ds.Mismatch != nil {
		m.Mismatch = ds.Mismatch.Error()
	}
	for _, s := range ds.Sources {
		m.Sources = append(m.Sources, ManifestSource{
			File:  filepath.Base(s.Path),
			Rows:  s.Rows,
			Width: s.Width,
			XXH3:  fmt.Sprintf("%016x", s.Checksum),
		})
	}
	return m
}

func writeManifest(path string, ds *dataset.Dataset, o Outcome) error {
	b, err := json.MarshalIndent(buildManifest(ds, o), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// ReadManifest loads a sidecar written by the driver.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

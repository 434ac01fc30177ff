package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
)

var (
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrNoMatchingFiles is expected when a dataset type is absent from the
	// current extraction.
	ErrNoMatchingFiles = errors.New("no matching files")
)

// Classify returns the files of dir whose uppercased name contains the
// recognition token of typeName, in directory listing order.
func Classify(cat *catalog.Catalog, dir, typeName string) ([]string, error) {
	entry, err := cat.Resolve(typeName)
	if err != nil {
		return nil, err
	}

	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		if strings.Contains(strings.ToUpper(d.Name()), entry.Token) {
			out = append(out, filepath.Join(dir, d.Name()))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s (token %s) in %s", ErrNoMatchingFiles, entry.Type, entry.Token, dir)
	}
	return out, nil
}

// FilesByType groups paths by dataset type.
type FilesByType map[catalog.DatasetType][]string

// ScanExtracted classifies every file of dir against all catalog entries.
// Files matching no token are left out.
func ScanExtracted(cat *catalog.Catalog, dir string) (FilesByType, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	out := FilesByType{}
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		name := strings.ToUpper(d.Name())
		for _, e := range cat.Entries() {
			if strings.Contains(name, e.Token) {
				out[e.Type] = append(out[e.Type], filepath.Join(dir, d.Name()))
				break
			}
		}
	}
	return out, nil
}

func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

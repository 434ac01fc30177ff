// Package dataset assembles every extracted file of one dataset type into a
// single table and attaches the catalog column names when the width matches.
package dataset

import (
	"fmt"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
	"github.com/abriciof/rfcnpj-parquet/internal/loaders"
	"github.com/abriciof/rfcnpj-parquet/internal/table"
)

// ColumnCountMismatch is recorded, not returned: the dataset is kept with
// positional column names.
type ColumnCountMismatch struct {
	Type     catalog.DatasetType
	Expected int
	Found    int
}

func (m *ColumnCountMismatch) Error() string {
	return fmt.Sprintf("%s: column count mismatch: expected %d, found %d", m.Type, m.Expected, m.Found)
}

// SourceFile describes one file that contributed rows.
type SourceFile struct {
	Path     string
	Rows     int
	Width    int
	Checksum uint64
}

type Dataset struct {
	Type catalog.DatasetType
	table.Table
	// Named reports whether Columns carries the catalog layout.
	Named    bool
	Sources  []SourceFile
	Failures []*loaders.FileReadError
	Mismatch *ColumnCountMismatch
}

func (d *Dataset) Empty() bool { return d.Len() == 0 }

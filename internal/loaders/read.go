package loaders

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/abriciof/rfcnpj-parquet/internal/table"
)

var ErrEmptyFile = errors.New("empty file")

// FileReadError is a per-file failure. The assembler skips the file and keeps
// going.
type FileReadError struct {
	File string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", filepath.Base(e.File), e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Loaded is a parsed file and the xxh3 checksum of its raw bytes.
type Loaded struct {
	File     string
	Table    *table.Table
	Checksum uint64
}

// LoadFile parses a ';' separated, latin-1, headerless file into a table of
// text cells with positional column names. Cells are kept verbatim: no
// trimming and no type inference. Every row must have the width of the first.
func LoadFile(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{File: path, Err: err}
	}
	defer f.Close()

	l, err := Parse(f)
	if err != nil {
		return nil, &FileReadError{File: path, Err: err}
	}
	l.File = path
	return l, nil
}

// Parse reads r with the same rules as LoadFile.
func Parse(r io.Reader) (*Loaded, error) {
	h := xxh3.New()
	dec := transform.NewReader(io.TeeReader(r, h), charmap.ISO8859_1.NewDecoder())

	reader := csv.NewReader(dec)
	reader.Comma = ';'
	reader.FieldsPerRecord = 0
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return &Loaded{
		Table: &table.Table{
			Columns: table.Positional(len(rows[0])),
			Rows:    rows,
		},
		Checksum: h.Sum64(),
	}, nil
}

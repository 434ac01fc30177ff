// Package columnar writes text tables to Parquet files and reads them back.
//
// Every column is a non-nullable UTF-8 string column, so identifiers keep
// their leading zeros and empty cells come back as empty strings, not nulls.
package columnar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/abriciof/rfcnpj-parquet/internal/table"
)

const (
	Ext = ".parquet"

	defaultBatchRows = 64 * 1024
)

type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write parquet %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

type options struct {
	codec     compress.Compression
	batchRows int
}

type Option func(*options)

// WithCompression selects the block codec; snappy is the default.
func WithCompression(c compress.Compression) Option {
	return func(o *options) { o.codec = c }
}

// WithBatchRows sets how many rows go into each record batch / row group.
func WithBatchRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchRows = n
		}
	}
}

// ParseCompression maps a config value to a codec.
func ParseCompression(v string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet compression %q", v)
	}
}

// Schema builds the arrow schema for a list of column names.
func Schema(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c, Type: arrow.BinaryTypes.String}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteFile writes t to path. Data goes to path+".part" first and is renamed
// into place once the file is complete.
func WriteFile(path string, t *table.Table, opts ...Option) error {
	o := options{codec: compress.Codecs.Snappy, batchRows: defaultBatchRows}
	for _, fn := range opts {
		fn(&o)
	}
	if t.Width() == 0 {
		return &WriteError{Path: path, Err: errors.New("table has no columns")}
	}

	tmp := path + ".part"
	if err := write(tmp, t, o); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func write(path string, t *table.Table, o options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	schema := Schema(t.Columns)
	props := parquet.NewWriterProperties(
		parquet.WithCompression(o.codec),
		parquet.WithMaxRowGroupLength(int64(o.batchRows)),
	)
	fw, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return err
	}

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	for start := 0; start < len(t.Rows); start += o.batchRows {
		end := min(start+o.batchRows, len(t.Rows))
		for _, row := range t.Rows[start:end] {
			for i := range t.Columns {
				sb := b.Field(i).(*array.StringBuilder)
				if i < len(row) {
					sb.Append(row[i])
				} else {
					sb.Append("")
				}
			}
		}
		rec := b.NewRecord()
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			_ = fw.Close()
			return err
		}
	}

	if err := fw.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

type stringValues interface {
	Len() int
	Value(i int) string
	IsNull(i int) bool
}

// ReadFile loads a whole Parquet file into memory.
func ReadFile(ctx context.Context, path string) (*table.Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	defer tbl.Release()

	nCols := int(tbl.NumCols())
	nRows := int(tbl.NumRows())
	out := &table.Table{
		Columns: make([]string, nCols),
		Rows:    make([][]string, nRows),
	}
	for r := range out.Rows {
		out.Rows[r] = make([]string, nCols)
	}

	for c := 0; c < nCols; c++ {
		col := tbl.Column(c)
		out.Columns[c] = col.Name()
		r := 0
		for _, chunk := range col.Data().Chunks() {
			sv, ok := chunk.(stringValues)
			if !ok {
				return nil, fmt.Errorf("read parquet %s: column %q has type %s, want string", path, col.Name(), chunk.DataType())
			}
			for i := 0; i < sv.Len(); i++ {
				if !sv.IsNull(i) {
					out.Rows[r][c] = sv.Value(i)
				}
				r++
			}
		}
	}
	return out, nil
}

// RowCount reads only the footer metadata.
func RowCount(path string) (int64, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return 0, fmt.Errorf("open parquet %s: %w", path, err)
	}
	defer rdr.Close()
	return rdr.NumRows(), nil
}

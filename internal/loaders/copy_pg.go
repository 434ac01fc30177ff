package loaders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/abriciof/rfcnpj-parquet/internal/table"
)

type CopyResult struct {
	Table string
	Rows  int64
}

func EnsureTable(ctx context.Context, db *sql.DB, name string, columns []string, drop bool) error {
	if drop {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(name)+`;`); err != nil {
			return err
		}
	}
	if _, err := db.ExecContext(ctx, CreateTableSQL(name, columns)); err != nil {
		return err
	}
	return nil
}

// CopyTable streams an assembled table into Postgres via pgx CopyFrom.
func CopyTable(ctx context.Context, db *sql.DB, name string, t *table.Table) (CopyResult, error) {
	sqlConn, err := db.Conn(ctx)
	if err != nil {
		return CopyResult{}, err
	}
	defer sqlConn.Close()

	src := &tableCopySource{rows: t.Rows, cols: t.Width(), pos: -1}

	var rows int64
	err = sqlConn.Raw(func(driverConn any) error {
		stdConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type %T", driverConn)
		}
		var copyErr error
		rows, copyErr = stdConn.Conn().CopyFrom(ctx, pgx.Identifier{name}, t.Columns, src)
		return copyErr
	})
	if err != nil {
		return CopyResult{}, fmt.Errorf("copy %s: %w", name, err)
	}

	return CopyResult{Table: name, Rows: rows}, nil
}

// tableCopySource adapts table rows to pgx.CopyFromSource. Short rows are
// padded with "" and long rows truncated to the column count.
type tableCopySource struct {
	rows [][]string
	cols int
	pos  int
}

func (s *tableCopySource) Next() bool {
	s.pos++
	return s.pos < len(s.rows)
}

func (s *tableCopySource) Values() ([]any, error) {
	row := s.rows[s.pos]
	out := make([]any, s.cols)
	for i := 0; i < s.cols; i++ {
		if i < len(row) {
			out[i] = row[i]
		} else {
			out[i] = ""
		}
	}
	return out, nil
}

func (s *tableCopySource) Err() error { return nil }

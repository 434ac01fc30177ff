// Package publish hands written datasets to downstream sinks: a Postgres
// table per dataset type and an S3 bucket for the parquet files.
package publish

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/abriciof/rfcnpj-parquet/internal/dataset"
	"github.com/abriciof/rfcnpj-parquet/internal/loaders"
)

// Postgres replaces the dataset's table (named after the type) with the
// assembled rows.
type Postgres struct {
	DB            *sql.DB
	CreateIndexes bool
}

func NewPostgres(db *sql.DB, createIndexes bool) *Postgres {
	return &Postgres{DB: db, CreateIndexes: createIndexes}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Publish(ctx context.Context, ds *dataset.Dataset, _ string) error {
	if p.DB == nil {
		return errors.New("postgres publisher has no connection")
	}
	name := string(ds.Type)
	if err := loaders.EnsureTable(ctx, p.DB, name, ds.Columns, true); err != nil {
		return err
	}
	res, err := loaders.CopyTable(ctx, p.DB, name, &ds.Table)
	if err != nil {
		return err
	}
	if p.CreateIndexes {
		if stmt := loaders.CreateIndexSQL(name, ds.Columns); stmt != "" {
			if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
	}
	slog.Info("dataset copied to postgres", "table", res.Table, "rows", res.Rows)
	return nil
}

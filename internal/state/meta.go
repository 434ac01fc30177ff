// Package state persists the last processed month and the per-type outcome of
// every run, in SQLite by default or in Postgres.
package state

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
)

const (
	KeyLoadedMonth = "loaded_month"
	KeyLoadedURL   = "loaded_url"
)

// RunRecord is one dataset type's result within a run.
type RunRecord struct {
	Month   string
	Dataset string
	Status  string
	Rows    int64
	Path    string
	Error   string
}

type MetaStore struct {
	db     *sql.DB
	driver string
}

// NewMetaStore wraps a connection opened with driver "sqlite" or "pgx".
func NewMetaStore(db *sql.DB, driver string) *MetaStore {
	return &MetaStore{db: db, driver: driver}
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// q rewrites $n placeholders to ?n for sqlite.
func (m *MetaStore) q(query string) string {
	if m.driver == "sqlite" {
		return placeholder.ReplaceAllString(query, "?$1")
	}
	return query
}

func (m *MetaStore) Ensure(ctx context.Context) error {
	ts, serial := "timestamptz NOT NULL DEFAULT now()", "bigserial PRIMARY KEY"
	if m.driver == "sqlite" {
		ts, serial = "text NOT NULL DEFAULT CURRENT_TIMESTAMP", "integer PRIMARY KEY AUTOINCREMENT"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rfcnpj_meta (
  key text PRIMARY KEY,
  value text NOT NULL,
  updated_at ` + ts + `
)`,
		`CREATE TABLE IF NOT EXISTS rfcnpj_runs (
  id ` + serial + `,
  month text NOT NULL,
  dataset text NOT NULL,
  status text NOT NULL,
  row_count bigint NOT NULL DEFAULT 0,
  path text NOT NULL DEFAULT '',
  error text NOT NULL DEFAULT '',
  finished_at ` + ts + `
)`,
		`CREATE INDEX IF NOT EXISTS rfcnpj_runs_month ON rfcnpj_runs(month)`,
	}
	for _, s := range stmts {
		if _, err := m.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MetaStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := m.db.QueryRowContext(ctx, m.q(`SELECT value FROM rfcnpj_meta WHERE key=$1`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (m *MetaStore) Set(ctx context.Context, key, value string) error {
	_, err := m.db.ExecContext(ctx, m.q(`
INSERT INTO rfcnpj_meta(key,value) VALUES ($1,$2)
ON CONFLICT (key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP
`), key, value)
	return err
}

// RecordRun stores all records of one run in a single transaction.
func (m *MetaStore) RecordRun(ctx context.Context, recs []RunRecord) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, m.q(`
INSERT INTO rfcnpj_runs(month,dataset,status,row_count,path,error) VALUES ($1,$2,$3,$4,$5,$6)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Month, r.Dataset, r.Status, r.Rows, r.Path, r.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Runs returns the records stored for a month, oldest first.
func (m *MetaStore) Runs(ctx context.Context, month string) ([]RunRecord, error) {
	rows, err := m.db.QueryContext(ctx, m.q(`
SELECT month, dataset, status, row_count, path, error FROM rfcnpj_runs WHERE month=$1 ORDER BY id`), month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.Month, &r.Dataset, &r.Status, &r.Rows, &r.Path, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Package table holds the in-memory text table passed between the loader,
// the assembler and the Parquet writer.
package table

import "strconv"

type Table struct {
	Columns []string
	Rows    [][]string
}

// Positional returns the names "0".."n-1" used for unnamed columns.
func Positional(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	return cols
}

func (t *Table) Width() int { return len(t.Columns) }

func (t *Table) Len() int { return len(t.Rows) }

// Column returns the values of column i.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// Head returns at most n rows.
func (t *Table) Head(n int) [][]string {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

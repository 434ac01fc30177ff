package loaders

import "strings"

// CreateTableSQL builds a CREATE TABLE with every column as TEXT, the same
// opaque-text contract the Parquet output follows.
func CreateTableSQL(name string, columns []string) string {
	var sb strings.Builder
	sb.WriteString(`CREATE TABLE IF NOT EXISTS `)
	sb.WriteString(quoteIdent(name))
	sb.WriteString(` (`)
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(quoteIdent(c))
		sb.WriteString(` TEXT`)
	}
	sb.WriteString(");")
	return sb.String()
}

// CreateIndexSQL returns the cnpj_basico index statement for tables that have
// that column, or "" otherwise.
func CreateIndexSQL(name string, columns []string) string {
	for _, c := range columns {
		if c == "cnpj_basico" {
			return `CREATE INDEX IF NOT EXISTS ` + quoteIdent(name+"_cnpj") + ` ON ` + quoteIdent(name) + `(cnpj_basico);`
		}
	}
	return ""
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

package loaders

import (
	"strings"
	"testing"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	sql := CreateTableSQL("empresa", []string{"cnpj_basico", "razao_social"})

	if !strings.Contains(sql, `CREATE TABLE IF NOT EXISTS "empresa"`) {
		t.Fatalf("unexpected SQL prefix: %s", sql)
	}
	if !strings.Contains(sql, `"cnpj_basico" TEXT`) || !strings.Contains(sql, `"razao_social" TEXT`) {
		t.Fatalf("expected TEXT columns in SQL: %s", sql)
	}
	if !strings.HasSuffix(sql, ");") {
		t.Fatalf("expected SQL to end with ); got %s", sql)
	}
}

func TestCreateTableSQL_PositionalColumns(t *testing.T) {
	t.Parallel()

	sql := CreateTableSQL(`we"ird`, []string{"0", "1"})
	if !strings.Contains(sql, `"we""ird"`) || !strings.Contains(sql, `"0" TEXT,"1" TEXT`) {
		t.Fatalf("unexpected SQL: %s", sql)
	}
}

func TestCreateIndexSQL(t *testing.T) {
	t.Parallel()

	if got := CreateIndexSQL("socio", []string{"cnpj_basico", "x"}); got != `CREATE INDEX IF NOT EXISTS "socio_cnpj" ON "socio"(cnpj_basico);` {
		t.Fatalf("unexpected index SQL: %s", got)
	}
	if got := CreateIndexSQL("cnae", []string{"codigo_cnae"}); got != "" {
		t.Fatalf("expected no index for cnae, got %s", got)
	}
}

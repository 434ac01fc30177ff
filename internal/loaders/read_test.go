package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_KeepsCellsAsText(t *testing.T) {
	t.Parallel()

	// "SÃO" and "AÇÚCAR" encoded as latin-1 bytes.
	raw := []byte("\"00123456\";\"S\xc3O PAULO\";\"\";\"0001,00\"\n\"00000001\";\"A\xc7\xdaCAR\";\"x\";\" 12 \"\n")
	p := filepath.Join(t.TempDir(), "K.D51213.EMPRECSV")
	require.NoError(t, os.WriteFile(p, raw, 0o644))

	l, err := LoadFile(p)
	require.NoError(t, err)
	require.Equal(t, p, l.File)
	require.NotZero(t, l.Checksum)
	require.Equal(t, []string{"0", "1", "2", "3"}, l.Table.Columns)
	require.Equal(t, [][]string{
		{"00123456", "SÃO PAULO", "", "0001,00"},
		{"00000001", "AÇÚCAR", "x", " 12 "},
	}, l.Table.Rows)
}

func TestLoadFile_Failures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.CNAECSV")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	ragged := filepath.Join(dir, "ragged.CNAECSV")
	require.NoError(t, os.WriteFile(ragged, []byte("a;b\nc;d;e\n"), 0o644))

	cases := map[string]string{
		"missing": filepath.Join(dir, "missing.CNAECSV"),
		"empty":   empty,
		"ragged":  ragged,
	}
	for name, p := range cases {
		_, err := LoadFile(p)
		var fre *FileReadError
		require.True(t, errors.As(err, &fre), "%s: expected FileReadError, got %v", name, err)
		require.Equal(t, p, fre.File)
		require.Contains(t, err.Error(), filepath.Base(p))
	}

	_, err := LoadFile(empty)
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestParse_ChecksumDependsOnContent(t *testing.T) {
	t.Parallel()

	a, err := Parse(strings.NewReader("1;a\n"))
	require.NoError(t, err)
	b, err := Parse(strings.NewReader("1;b\n"))
	require.NoError(t, err)
	c, err := Parse(strings.NewReader("1;a\n"))
	require.NoError(t, err)

	require.NotEqual(t, a.Checksum, b.Checksum)
	require.Equal(t, a.Checksum, c.Checksum)
}

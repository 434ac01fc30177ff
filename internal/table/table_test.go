package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositional(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"0", "1", "2"}, Positional(3))
	require.Empty(t, Positional(0))
}

func TestColumnAndHead(t *testing.T) {
	t.Parallel()

	tb := &Table{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"1", "x"}, {"2", "y"}, {"3"}},
	}
	require.Equal(t, 2, tb.Width())
	require.Equal(t, 3, tb.Len())
	require.Equal(t, []string{"x", "y", ""}, tb.Column(1))
	require.Len(t, tb.Head(2), 2)
	require.Len(t, tb.Head(10), 3)
	require.Len(t, tb.Head(-1), 3)
}

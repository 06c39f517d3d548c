package similartext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	columns := []string{"string_col", "int_col", "double_col", "col_a", "col_b"}

	testCases := []struct {
		name     string
		names    []string
		src      string
		expected string
	}{
		{"no names", nil, "int_col", ""},
		{"empty source", columns, "", ""},
		{"exact", columns, "int_col", ", maybe you mean int_col?"},
		{"typo", columns, "string_cl", ", maybe you mean string_col?"},
		{"too different", columns, "timestamp", ""},
		{"tie", columns, "col_c", ", maybe you mean col_a or col_b?"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Find(tt.names, tt.src))
		})
	}
}

func TestFindFromMap(t *testing.T) {
	require := require.New(t)

	var tables map[string]bool
	require.Empty(FindFromMap(tables, "functional_alltypes"))

	tables = map[string]bool{
		"b_table": true,
		"a_table": true,
		"other":   false,
	}
	require.Equal(", maybe you mean a_table or b_table?", FindFromMap(tables, "c_table"))
	require.Empty(FindFromMap(tables, "functional_alltypes"))
}

func TestDistance(t *testing.T) {
	require := require.New(t)

	require.Equal(0, distance("col", "col"))
	require.Equal(3, distance("", "col"))
	require.Equal(3, distance("col", ""))
	require.Equal(1, distance("col", "cal"))
	require.Equal(3, distance("kitten", "sitting"))
}

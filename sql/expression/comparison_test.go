package expression_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

func TestComparison(t *testing.T) {
	table := testTable(t)

	testCases := []struct {
		name  string
		left  string
		right string
		op    string
		ok    bool
	}{
		{"ints", "int_col", "int_col", expression.EqualsOp, true},
		{"int and float", "int_col", "float_col", expression.LessThanOp, true},
		{"timestamps", "timestamp_col", "timestamp_col", expression.GreaterThanOrEqualOp, true},
		{"string and int", "string_col", "int_col", expression.EqualsOp, false},
		{"date and timestamp", "date_col", "timestamp_col", expression.LessThanOp, false},
		{"structs ordered", "struct_col", "struct_col", expression.LessThanOp, false},
		{"structs equal", "struct_col", "struct_col", expression.EqualsOp, true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			c, err := expression.NewComparison(col(t, table, tt.left), col(t, table, tt.right), tt.op)
			if !tt.ok {
				require.Error(err)
				require.True(sql.ErrTypeMismatch.Is(err))
				return
			}
			require.NoError(err)
			require.Equal(sql.Boolean, c.Type())
			require.Equal(tt.op, c.Op)
		})
	}
}

func TestLogic(t *testing.T) {
	require := require.New(t)
	table := testTable(t)
	b := col(t, table, "bool_col")

	and, err := expression.NewAnd(b, b)
	require.NoError(err)

	or, err := expression.NewOr(and, b)
	require.NoError(err)

	not, err := expression.NewNot(or)
	require.NoError(err)
	require.Equal(sql.Boolean, not.Type())

	_, err = expression.NewAnd(b, col(t, table, "int_col"))
	require.True(sql.ErrTypeMismatch.Is(err))

	joined, err := expression.JoinAnd(b, b, b)
	require.NoError(err)
	require.IsType(&expression.And{}, joined)

	none, err := expression.JoinAnd()
	require.NoError(err)
	require.Nil(none)
}

func TestIsNullIfNull(t *testing.T) {
	require := require.New(t)
	table := testTable(t)

	isNull, err := expression.NewIsNull(col(t, table, "string_col"))
	require.NoError(err)
	require.False(isNull.Negated())

	notNull, err := expression.NewNotNull(col(t, table, "string_col"))
	require.NoError(err)
	require.True(notNull.Negated())

	ifNull, err := expression.NewIfNull(col(t, table, "int_col"), expression.MustLiteral(1.5))
	require.NoError(err)
	require.Equal(sql.Float64, ifNull.Type())

	_, err = expression.NewIfNull(col(t, table, "int_col"), expression.MustLiteral("a"))
	require.True(sql.ErrTypeMismatch.Is(err))
}

package aggregation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression/function/aggregation"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
)

func testTable(t *testing.T, name string) *plan.UnboundTable {
	t.Helper()
	table, err := plan.NewUnboundTable(name, sql.Schema{
		{Name: "i", Type: sql.Int64},
		{Name: "f", Type: sql.Float64},
		{Name: "s", Type: sql.String},
		{Name: "b", Type: sql.Boolean},
		{Name: "a", Type: sql.CreateArray(sql.String)},
	})
	require.NoError(t, err)
	return table
}

func TestAggregationTypes(t *testing.T) {
	table := testTable(t, "t")
	i := plan.MustColumn(table, "i")
	f := plan.MustColumn(table, "f")
	s := plan.MustColumn(table, "s")

	sum, err := aggregation.NewSum(i, nil)
	require.NoError(t, err)
	sumf, err := aggregation.NewSum(f, nil)
	require.NoError(t, err)
	mean, err := aggregation.NewMean(i, nil)
	require.NoError(t, err)
	min, err := aggregation.NewMin(s, nil)
	require.NoError(t, err)
	max, err := aggregation.NewMax(f, nil)
	require.NoError(t, err)
	count, err := aggregation.NewCount(s, nil)
	require.NoError(t, err)
	nunique, err := aggregation.NewNUnique(s, nil)
	require.NoError(t, err)
	collect, err := aggregation.NewCollect(i, nil)
	require.NoError(t, err)
	rows, err := aggregation.NewCountRows(table, nil)
	require.NoError(t, err)

	testCases := []struct {
		agg  sql.Aggregation
		name string
		typ  sql.Type
	}{
		{sum, "sum", sql.Int64},
		{sumf, "sum", sql.Float64},
		{mean, "mean", sql.Float64},
		{min, "min", sql.String},
		{max, "max", sql.Float64},
		{count, "count", sql.Int64},
		{nunique, "nunique", sql.Int64},
		{collect, "collect", sql.CreateArray(sql.Int64)},
		{rows, "count", sql.Int64},
	}

	for _, tt := range testCases {
		t.Run(tt.agg.String(), func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.name, tt.agg.Name())
			require.Equal(tt.name, tt.agg.FunctionName())
			require.True(tt.typ.Equals(tt.agg.Type()))
			require.True(expression.IsReduction(tt.agg))
		})
	}
}

func TestAggregationInvalidTypes(t *testing.T) {
	require := require.New(t)
	table := testTable(t, "t")

	_, err := aggregation.NewSum(plan.MustColumn(table, "s"), nil)
	require.True(sql.ErrTypeMismatch.Is(err))

	_, err = aggregation.NewMean(plan.MustColumn(table, "a"), nil)
	require.True(sql.ErrTypeMismatch.Is(err))

	_, err = aggregation.NewMax(plan.MustColumn(table, "a"), nil)
	require.True(sql.ErrTypeMismatch.Is(err))

	_, err = aggregation.NewCollect(plan.MustColumn(table, "a"), nil)
	require.True(sql.ErrTypeMismatch.Is(err))

	_, err = aggregation.NewSum(nil, nil)
	require.Error(err)
}

func TestAggregationWhere(t *testing.T) {
	require := require.New(t)
	table := testTable(t, "t")
	other := testTable(t, "u")

	b := plan.MustColumn(table, "b")
	sum, err := aggregation.NewSum(plan.MustColumn(table, "f"), b)
	require.NoError(err)
	require.Equal(b, sum.Where())
	require.Len(sum.Children(), 2)

	_, err = aggregation.NewSum(plan.MustColumn(table, "f"), plan.MustColumn(table, "i"))
	require.True(sql.ErrTypeMismatch.Is(err))

	_, err = aggregation.NewSum(plan.MustColumn(table, "f"), plan.MustColumn(other, "b"))
	require.True(sql.ErrForeignColumn.Is(err))

	_, err = aggregation.NewCountRows(table, plan.MustColumn(other, "b"))
	require.True(sql.ErrForeignColumn.Is(err))

	rows, err := aggregation.NewCountRows(table, b)
	require.NoError(err)
	require.Equal([]sql.Node{table}, expression.Tables(rows))
}

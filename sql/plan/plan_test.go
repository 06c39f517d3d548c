package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression/function/aggregation"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
)

func newTable(t *testing.T, name string, cols ...string) *plan.UnboundTable {
	t.Helper()
	var schema sql.Schema
	for _, c := range cols {
		schema = append(schema, &sql.Column{Name: c, Type: sql.Int64, Nullable: true})
	}
	table, err := plan.NewUnboundTable(name, schema)
	require.NoError(t, err)
	return table
}

func gt(t *testing.T, e sql.Expression, v int64) sql.Expression {
	t.Helper()
	c, err := expression.NewGreaterThan(e, expression.MustLiteral(v))
	require.NoError(t, err)
	return c
}

func TestUnboundTable(t *testing.T) {
	require := require.New(t)

	table := newTable(t, "t", "a", "b")
	require.Equal("t", table.Name())
	require.Equal([]string{"a", "b"}, table.Schema().Names())
	require.Equal("t", table.Schema()[0].Source)

	_, err := plan.NewUnboundTable("t", sql.Schema{
		{Name: "a", Type: sql.Int64},
		{Name: "a", Type: sql.String},
	})
	require.True(sql.ErrDuplicateColumn.Is(err))

	_, err = plan.NewUnboundTable("", nil)
	require.True(sql.ErrInvalidTableName.Is(err))
}

func TestTablePartitionSchema(t *testing.T) {
	require := require.New(t)

	table, err := plan.NewTable(&sql.TableMetadata{
		ID:            sql.TableID{Project: "p", Dataset: "d", Name: "t"},
		Schema:        sql.Schema{{Name: "a", Type: sql.Int64}},
		IngestionTime: true,
	})
	require.NoError(err)
	require.Equal([]string{"a", sql.PartitionTimeColumn}, table.Schema().Names())

	c, err := plan.Column(table, sql.DefaultPartitionColumn)
	require.NoError(err)
	require.Equal(sql.PartitionTimeColumn, c.Name())
	require.True(c.IsPartition())
	require.Equal(sql.Timestamp, c.Type())
}

func TestProject(t *testing.T) {
	require := require.New(t)
	table := newTable(t, "t", "a", "b")

	p, err := plan.NewProject(table, plan.MustColumn(table, "b"))
	require.NoError(err)
	require.Equal([]string{"b"}, p.Schema().Names())
	require.Equal([]sql.Node{table}, p.Children())

	plus, err := expression.NewPlus(plan.MustColumn(table, "a"), expression.MustLiteral(int64(1)))
	require.NoError(err)

	m, err := plan.NewMutate(table, expression.NewAlias(plus, "c"))
	require.NoError(err)
	require.Equal([]string{"a", "b", "c"}, m.Schema().Names())
	require.True(m.Star)

	_, err = plan.NewMutate(table, expression.NewAlias(plus, "a"))
	require.True(sql.ErrDuplicateColumn.Is(err))

	sum, err := aggregation.NewSum(plan.MustColumn(table, "a"), nil)
	require.NoError(err)
	_, err = plan.NewProject(table, sum)
	require.True(sql.ErrUnsupportedOperation.Is(err))

	_, err = plan.Column(p, "a")
	require.True(sql.ErrColumnNotFound.Is(err))
}

func TestScopeValidation(t *testing.T) {
	require := require.New(t)
	t1 := newTable(t, "t1", "a", "b")
	t2 := newTable(t, "t2", "a", "c")

	p, err := plan.NewProject(t1, plan.MustColumn(t1, "a"))
	require.NoError(err)

	_, err = plan.NewFilter(p, gt(t, plan.MustColumn(t1, "b"), 1))
	require.True(sql.ErrColumnNotFound.Is(err))

	f, err := plan.NewFilter(p, gt(t, plan.MustColumn(t1, "a"), 1))
	require.NoError(err)
	require.Equal(p.Schema(), f.Schema())

	_, err = plan.NewFilter(t1, gt(t, plan.MustColumn(t2, "a"), 1))
	require.True(sql.ErrForeignColumn.Is(err))

	_, err = plan.NewFilter(t1, plan.MustColumn(t1, "a"))
	require.True(sql.ErrTypeMismatch.Is(err))
}

func TestAggregate(t *testing.T) {
	require := require.New(t)
	table := newTable(t, "t", "a", "b")

	sum, err := aggregation.NewSum(plan.MustColumn(table, "b"), nil)
	require.NoError(err)

	agg, err := plan.NewAggregate(
		table,
		[]sql.Expression{plan.MustColumn(table, "a")},
		[]sql.Expression{expression.NewAlias(sum, "total")},
	)
	require.NoError(err)
	require.Equal([]string{"a", "total"}, agg.Schema().Names())
	require.Len(agg.Expressions(), 2)

	_, err = plan.NewAggregate(
		table,
		nil,
		[]sql.Expression{plan.MustColumn(table, "a")},
	)
	require.True(sql.ErrTypeMismatch.Is(err))
}

func TestJoin(t *testing.T) {
	require := require.New(t)
	t1 := newTable(t, "t1", "a", "b")
	t2 := newTable(t, "t2", "a", "c")

	eq, err := expression.NewEquals(plan.MustColumn(t1, "a"), plan.MustColumn(t2, "a"))
	require.NoError(err)

	j, err := plan.NewInnerJoin(t1, t2, eq)
	require.NoError(err)
	require.Equal([]string{"a", "b", "a", "c"}, j.Schema().Names())

	_, err = plan.Column(j, "a")
	require.True(sql.ErrAmbiguousColumn.Is(err))

	c, err := plan.Column(j, "c")
	require.NoError(err)
	require.Equal(j, c.Table())

	_, err = plan.NewInnerJoin(t1, t2)
	require.True(sql.ErrInvalidNode.Is(err))

	_, err = plan.NewJoin(plan.JoinTypeCross, t1, t2, eq)
	require.True(sql.ErrInvalidNode.Is(err))

	cross, err := plan.NewCrossJoin(t1, t2)
	require.NoError(err)
	require.Equal(plan.JoinTypeCross, cross.Op)
}

func TestSelfJoin(t *testing.T) {
	require := require.New(t)
	table := newTable(t, "t", "a")

	eq, err := expression.NewEquals(plan.MustColumn(table, "a"), plan.MustColumn(table, "a"))
	require.NoError(err)

	_, err = plan.NewInnerJoin(table, table, eq)
	require.True(sql.ErrSelfJoin.Is(err))

	view, err := plan.NewView(table)
	require.NoError(err)
	require.NotEqual(table.ID(), view.ID())
	require.True(plan.IsBaseTable(view))

	eq, err = expression.NewEquals(plan.MustColumn(table, "a"), plan.MustColumn(view, "a"))
	require.NoError(err)

	_, err = plan.NewInnerJoin(table, view, eq)
	require.NoError(err)
}

func TestSortLimit(t *testing.T) {
	require := require.New(t)
	table := newTable(t, "t", "a", "b")

	s, err := plan.NewSort(table, plan.Asc(plan.MustColumn(table, "a")), plan.Desc(plan.MustColumn(table, "b")))
	require.NoError(err)
	require.Len(s.Expressions(), 2)
	require.Equal(plan.Descending, s.SortFields[1].Order)

	_, err = plan.NewSort(table)
	require.True(sql.ErrInvalidNode.Is(err))

	l, err := plan.NewLimit(s, 10, 5)
	require.NoError(err)
	require.Equal(table.Schema(), l.Schema())

	_, err = plan.NewLimit(s, -1, 0)
	require.True(sql.ErrInvalidLimit.Is(err))
}

const expectedPlanTree = `Limit(10)
 └─ Filter(t.a > 1)
     └─ UnboundTable(t)
`

func TestNodeString(t *testing.T) {
	require := require.New(t)
	table := newTable(t, "t", "a")

	f, err := plan.NewFilter(table, gt(t, plan.MustColumn(table, "a"), 1))
	require.NoError(err)

	l, err := plan.NewLimit(f, 10, 0)
	require.NoError(err)

	require.Equal(expectedPlanTree, l.String())
}

package bqsql_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/require"

	bqsql "gopkg.in/src-d/go-bqsql.v0"
	"gopkg.in/src-d/go-bqsql.v0/mem"
	"gopkg.in/src-d/go-bqsql.v0/remote"
	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/compiler"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression/function/aggregation"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
	"gopkg.in/src-d/go-bqsql.v0/sql/udf"
)

func testCatalog() *mem.Catalog {
	db := mem.NewDatabase("ibis-gbq", "testing")
	db.AddTable(mem.NewTable("functional_alltypes", sql.Schema{
		{Name: "int_col", Type: sql.Int64, Nullable: true},
		{Name: "double_col", Type: sql.Float64, Nullable: true},
		{Name: "string_col", Type: sql.String, Nullable: true},
	}))
	db.AddTable(mem.NewTable("functional_alltypes_parted", sql.Schema{
		{Name: "string_col", Type: sql.String, Nullable: true},
		{Name: "int_col", Type: sql.Int64, Nullable: true},
	}, mem.IngestionTime()))
	db.AddTable(mem.NewTable("date_column_parted", sql.Schema{
		{Name: "my_date_parted_col", Type: sql.Date},
		{Name: "string_col", Type: sql.String, Nullable: true},
		{Name: "int_col", Type: sql.Int64, Nullable: true},
	}, mem.PartitionedBy("my_date_parted_col")))

	epa := mem.NewDatabase("bigquery-public-data", "epa_historical_air_quality")
	epa.AddTable(mem.NewTable("co_daily_summary", sql.Schema{
		{Name: "state_name", Type: sql.String, Nullable: true},
	}))

	return mem.NewCatalog(db, epa)
}

func newClient(t *testing.T, engine remote.Engine, opts ...bqsql.Option) *bqsql.Client {
	t.Helper()
	opts = append([]bqsql.Option{bqsql.WithDataset("testing")}, opts...)
	client, err := bqsql.New("ibis-gbq", testCatalog(), engine, opts...)
	require.NoError(t, err)
	return client
}

func TestExecuteLiteral(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	engine.Respond("SELECT 1 AS `tmp`", nil, []interface{}{"1"})
	client := newClient(t, engine)

	result, err := client.Execute(context.Background(), expression.MustLiteral(int64(1)), nil)
	require.NoError(err)

	scalar, err := result.Scalar()
	require.NoError(err)
	require.Equal(int64(1), scalar)

	requests := engine.Requests()
	require.Len(requests, 1)
	require.Equal("ibis-gbq", requests[0].Project)
	require.Equal("ibis-gbq.testing", requests[0].Dataset)
	require.Empty(requests[0].Parameters)
}

func TestExecuteAggregate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	engine := mem.NewEngine()
	engine.HandleAll(func(context.Context, *remote.Request) (remote.Result, error) {
		return &remote.Rows{Values: [][]interface{}{{"a", "10.5"}, {"b", nil}}}, nil
	})
	client := newClient(t, engine)

	table, err := client.Table(ctx, "functional_alltypes", "")
	require.NoError(err)

	sum, err := aggregation.NewSum(plan.MustColumn(table, "double_col"), nil)
	require.NoError(err)

	agg, err := plan.NewAggregate(
		table,
		[]sql.Expression{plan.MustColumn(table, "string_col")},
		[]sql.Expression{expression.NewAlias(sum, "total")},
	)
	require.NoError(err)

	q, err := client.Compile(ctx, agg, nil)
	require.NoError(err)
	require.Equal("SELECT `string_col`, sum(`double_col`) AS `total`\n"+
		"FROM `ibis-gbq.testing.functional_alltypes`\n"+
		"GROUP BY 1", q.SQL)

	result, err := client.Execute(ctx, agg, nil)
	require.NoError(err)
	require.Equal([]string{"string_col", "total"}, result.Schema.Names())
	require.Equal([]sql.Row{{"a", 10.5}, {"b", nil}}, result.Rows)
	require.Equal(q.SQL, engine.Requests()[0].SQL)
}

func TestExecuteIngestionTimeTable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	engine := mem.NewEngine()
	engine.Respond("SELECT *\nFROM `ibis-gbq.testing.functional_alltypes_parted`", nil,
		[]interface{}{"a", "1"},
	)
	engine.Respond("SELECT *, `_PARTITIONTIME` AS `PARTITIONTIME`\nFROM `ibis-gbq.testing.functional_alltypes_parted`", nil,
		[]interface{}{"a", "1", "1.4832288E9"},
	)

	options := sql.NewOptions()
	options.SetPartitionColumn(nil)
	client := newClient(t, engine, bqsql.WithOptions(options))

	table, err := client.Table(ctx, "functional_alltypes_parted", "")
	require.NoError(err)

	result, err := client.Execute(ctx, table, nil)
	require.NoError(err)
	require.Equal([]string{"string_col", "int_col"}, result.Schema.Names())
	require.Equal([]sql.Row{{"a", int64(1)}}, result.Rows)

	client = newClient(t, engine)
	table, err = client.Table(ctx, "functional_alltypes_parted", "")
	require.NoError(err)

	result, err = client.Execute(ctx, table, nil)
	require.NoError(err)
	require.Equal([]string{"string_col", "int_col", "PARTITIONTIME"}, result.Schema.Names())
	require.Equal([]sql.Row{{"a", int64(1), time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)}}, result.Rows)
}

func TestExecuteUnboundParameter(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	client := newClient(t, engine)

	param := expression.NewParameter(sql.Int64, "my_param")
	_, err := client.Execute(context.Background(), param, nil)
	require.True(sql.ErrUnboundParameter.Is(err))
	require.Contains(err.Error(), "my_param")
	require.Empty(engine.Requests())
}

func TestExecuteQueryParameters(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	engine.HandleAll(func(context.Context, *remote.Request) (remote.Result, error) {
		return &remote.Rows{Values: [][]interface{}{{"6"}}}, nil
	})
	client := newClient(t, engine, bqsql.WithQueryParameters())

	param := expression.NewParameter(sql.Int64, "my_param")
	plus, err := expression.NewPlus(param, expression.MustLiteral(int64(1)))
	require.NoError(err)

	result, err := client.Execute(context.Background(), plus, expression.Bindings{param: int64(5)})
	require.NoError(err)

	scalar, err := result.Scalar()
	require.NoError(err)
	require.Equal(int64(6), scalar)

	requests := engine.Requests()
	require.Len(requests, 1)
	require.Contains(requests[0].SQL, "@my_param")
	require.Equal([]remote.Parameter{
		{Name: "my_param", Type: sql.Int64, Value: "5"},
	}, requests[0].Parameters)
}

func TestExecuteNestedStructParameter(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	client := newClient(t, engine, bqsql.WithQueryParameters())

	param := expression.NewParameter(sql.MustParseType("struct<x: struct<y: int64>>"), "nested")
	value := sql.NewStructValue("x", sql.NewStructValue("y", int64(1)))

	_, err := client.Execute(context.Background(), param, expression.Bindings{param: value})
	require.True(sql.ErrUnsupportedBackendType.Is(err))
	require.Empty(engine.Requests())
}

func TestExecuteRemoteError(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	engine.Fail("SELECT 1 AS `tmp`", fmt.Errorf("quota exceeded"))
	client := newClient(t, engine)

	_, err := client.Execute(context.Background(), expression.MustLiteral(int64(1)), nil)
	require.True(sql.ErrRemoteExecution.Is(err))
	require.Contains(err.Error(), engine.Requests()[0].JobID.String())
}

func TestExecuteCancelled(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	engine.Respond("SELECT 1 AS `tmp`", nil, []interface{}{"1"})
	client := newClient(t, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Execute(ctx, expression.MustLiteral(int64(1)), nil)
	require.True(sql.ErrQueryCancelled.Is(err))
}

func TestExecuteAsync(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	client := newClient(t, engine)

	err := client.ExecuteAsync(context.Background(), expression.MustLiteral(int64(1)), nil)
	require.True(sql.ErrAsyncNotImplemented.Is(err))
	require.Empty(engine.Requests())
}

func TestExecuteFunctionCall(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	engine := mem.NewEngine()
	engine.HandleAll(func(context.Context, *remote.Request) (remote.Result, error) {
		return &remote.Rows{Values: [][]interface{}{{"2.5"}}}, nil
	})
	client := newClient(t, engine)

	addOne, err := udf.New(
		"add_one",
		[]udf.Param{{Name: "x", Type: sql.Float64}},
		sql.Float64,
		"function add_one(x) {\n    return (x + 1);\n}",
	)
	require.NoError(err)
	require.NoError(client.Functions().Register(addOne))

	table, err := client.Table(ctx, "functional_alltypes", "")
	require.NoError(err)

	call, err := client.Call("add_one", plan.MustColumn(table, "double_col"))
	require.NoError(err)

	_, err = client.Call("add_two", plan.MustColumn(table, "double_col"))
	require.True(udf.ErrFunctionNotFound.Is(err))

	project, err := plan.NewProject(table, call)
	require.NoError(err)

	result, err := client.Execute(ctx, project, nil)
	require.NoError(err)
	require.Equal([]sql.Row{{2.5}}, result.Rows)

	query := engine.Requests()[0].SQL
	require.True(strings.HasPrefix(query, "CREATE TEMPORARY FUNCTION add_one(x FLOAT64)"))
	require.True(strings.HasSuffix(query, "SELECT add_one(`double_col`) AS `add_one`\n"+
		"FROM `ibis-gbq.testing.functional_alltypes`"))
}

func TestExecuteSpans(t *testing.T) {
	require := require.New(t)

	tracer := mocktracer.New()
	engine := mem.NewEngine()
	engine.Respond("SELECT 1 AS `tmp`", nil, []interface{}{"1"})
	client := newClient(t, engine, bqsql.WithTracer(tracer))

	_, err := client.Execute(context.Background(), expression.MustLiteral(int64(1)), nil)
	require.NoError(err)

	spans := tracer.FinishedSpans()
	require.Len(spans, 2)
	require.Equal("compiler.Compile", spans[0].OperationName)
	require.Equal("bqsql.Execute", spans[1].OperationName)
	require.Equal(spans[1].SpanContext.SpanID, spans[0].ParentID)
	require.Equal(engine.Requests()[0].JobID.String(), spans[1].Tag(bqsql.JobIDLogField))
	require.NotNil(spans[1].Tag(bqsql.QueryHashLogField))
}

func TestRawSQL(t *testing.T) {
	require := require.New(t)

	engine := mem.NewEngine()
	engine.Respond("SELECT 1", nil, []interface{}{int64(1)})
	client := newClient(t, engine)

	cursor, err := client.RawSQL(context.Background(), "SELECT 1")
	require.NoError(err)
	require.Equal([]sql.Row{{int64(1)}}, cursor.FetchAll())
}

func TestTable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	client := newClient(t, mem.NewEngine())

	table, err := client.Table(ctx, "functional_alltypes", "")
	require.NoError(err)
	require.Equal("ibis-gbq.testing.functional_alltypes", table.TableID().String())

	table, err = client.Table(ctx, "co_daily_summary", "bigquery-public-data.epa_historical_air_quality")
	require.NoError(err)
	require.Equal("bigquery-public-data.epa_historical_air_quality.co_daily_summary", table.TableID().String())

	_, err = client.Table(ctx, "footable", "")
	require.True(sql.ErrTableNotFound.Is(err))

	_, err = client.Table(ctx, "testing.functional_alltypes", "testing")
	require.True(sql.ErrInvalidTableName.Is(err))
}

func TestExistsTable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	client := newClient(t, mem.NewEngine())

	ok, err := client.ExistsTable(ctx, "functional_alltypes", "")
	require.NoError(err)
	require.True(ok)

	ok, err = client.ExistsTable(ctx, "footable", "")
	require.NoError(err)
	require.False(ok)

	database := "bigquery-public-data.epa_historical_air_quality"
	ok, err = client.ExistsTable(ctx, "co_daily_summary", database)
	require.NoError(err)
	require.True(ok)

	ok, err = client.ExistsTable(ctx, "foobar", database)
	require.NoError(err)
	require.False(ok)

	_, err = client.ExistsTable(ctx, database+".co_daily_summary", "")
	require.True(sql.ErrInvalidTableName.Is(err))
}

func TestExistsDatabase(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"testing", true},
		{"foodataset", false},
		{"bigquery-public-data.epa_historical_air_quality", true},
		{"bigquery-foo-bar-project.baz_dataset", false},
	}

	client := newClient(t, mem.NewEngine())
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ok, err := client.ExistsDatabase(context.Background(), tt.name)
			require.NoError(err)
			require.Equal(tt.expected, ok)
		})
	}
}

func TestListTables(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	client := newClient(t, mem.NewEngine())

	tables, err := client.ListTables(ctx, "functional_alltypes")
	require.NoError(err)
	require.Equal([]string{"functional_alltypes", "functional_alltypes_parted"}, tables)

	tables, err = client.ListTables(ctx, "^date_")
	require.NoError(err)
	require.Equal([]string{"date_column_parted"}, tables)

	_, err = client.ListTables(ctx, "(")
	require.Error(err)
}

func TestDatabases(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	client := newClient(t, mem.NewEngine())

	current := client.CurrentDatabase()
	require.Equal("testing", current.Name())

	all, err := client.ListTables(ctx, "")
	require.NoError(err)

	tables, err := current.Tables(ctx)
	require.NoError(err)
	require.Equal(all, tables)

	db, err := client.Database("testing")
	require.NoError(err)
	tables, err = db.Tables(ctx)
	require.NoError(err)
	require.Equal(all, tables)

	require.NoError(client.SetDatabase("bigquery-public-data.epa_historical_air_quality"))
	tables, err = client.ListTables(ctx, "")
	require.NoError(err)
	require.Contains(tables, "co_daily_summary")
	require.Equal("epa_historical_air_quality", client.CurrentDatabase().Name())

	table, err := client.CurrentDatabase().Table(ctx, "co_daily_summary")
	require.NoError(err)
	require.Equal("bigquery-public-data", table.TableID().Project)

	require.True(sql.ErrInvalidTableName.Is(client.SetDatabase("a.b.c")))

	ok, err := client.CurrentDatabase().Exists(ctx)
	require.NoError(err)
	require.True(ok)
}

func TestRepeatedProjectName(t *testing.T) {
	require := require.New(t)

	client, err := bqsql.New("ibis-gbq", testCatalog(), mem.NewEngine(), bqsql.WithDataset("ibis-gbq.testing"))
	require.NoError(err)

	tables, err := client.ListTables(context.Background(), "")
	require.NoError(err)
	require.Contains(tables, "functional_alltypes")

	_, err = bqsql.New("ibis-gbq", testCatalog(), mem.NewEngine(), bqsql.WithDataset("a..b"))
	require.True(sql.ErrInvalidTableName.Is(err))
}

func TestColumns(t *testing.T) {
	partitionColumn := func(name string) *string { return &name }

	testCases := []struct {
		option   *string
		table    string
		expected []string
	}{
		{nil, "date_column_parted", []string{"my_date_parted_col", "string_col", "int_col"}},
		{partitionColumn("PARTITIONTIME"), "date_column_parted", []string{"PARTITIONTIME", "string_col", "int_col"}},
		{partitionColumn("foo_bar"), "date_column_parted", []string{"foo_bar", "string_col", "int_col"}},
		{nil, "functional_alltypes_parted", []string{"string_col", "int_col", "_PARTITIONTIME"}},
		{partitionColumn("PARTITIONTIME"), "functional_alltypes_parted", []string{"string_col", "int_col", "PARTITIONTIME"}},
		{partitionColumn("FOO_BAR"), "functional_alltypes", []string{"int_col", "double_col", "string_col"}},
	}

	for _, tt := range testCases {
		name := "nil"
		if tt.option != nil {
			name = *tt.option
		}

		t.Run(tt.table+"/"+name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			options := sql.NewOptions()
			options.SetPartitionColumn(tt.option)
			client := newClient(t, mem.NewEngine(), bqsql.WithOptions(options))

			table, err := client.Table(ctx, tt.table, "")
			require.NoError(err)
			require.Equal(tt.expected, client.Columns(ctx, table))
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	require := require.New(t)

	cfg, err := bqsql.ParseConfig([]byte("project_id: ibis-gbq\ndataset_id: testing\ndialect: sqlite\nquery_parameters: true\n"))
	require.NoError(err)

	engine := mem.NewEngine()
	engine.HandleAll(func(context.Context, *remote.Request) (remote.Result, error) {
		return &remote.Rows{Values: [][]interface{}{{"1"}}}, nil
	})

	client, err := bqsql.NewFromConfig(cfg, testCatalog(), engine)
	require.NoError(err)
	require.Equal("ibis-gbq", client.Project())
	require.Equal("testing", client.CurrentDatabase().Name())

	param := expression.NewParameter(sql.Int64, "p")
	q, err := client.Compile(context.Background(), param, expression.Bindings{param: 1})
	require.NoError(err)
	require.Equal(`SELECT @p AS "p"`, q.SQL)
	require.Equal([]compiler.QueryParameter{{Name: "p", Type: sql.Int64, Value: int64(1)}}, q.Parameters)

	_, err = client.Execute(context.Background(), param, expression.Bindings{param: 1})
	require.NoError(err)
	require.Equal(`SELECT @p AS "p"`, engine.Requests()[0].SQL)
}

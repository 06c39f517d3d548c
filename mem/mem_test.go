package mem_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.in/src-d/go-bqsql.v0/mem"
	"gopkg.in/src-d/go-bqsql.v0/remote"
	"gopkg.in/src-d/go-bqsql.v0/sql"
)

func testCatalog() *mem.Catalog {
	db := mem.NewDatabase("ibis-gbq", "testing")
	db.AddTable(mem.NewTable("functional_alltypes", sql.Schema{
		{Name: "int_col", Type: sql.Int64, Nullable: true},
		{Name: "string_col", Type: sql.String, Nullable: true},
	}))
	db.AddTable(mem.NewTable("functional_alltypes_parted", sql.Schema{
		{Name: "int_col", Type: sql.Int64, Nullable: true},
	}, mem.IngestionTime()))
	db.AddTable(mem.NewTable("date_column_parted", sql.Schema{
		{Name: "my_date_parted_col", Type: sql.Date},
	}, mem.PartitionedBy("my_date_parted_col")))
	return mem.NewCatalog(db, mem.NewDatabase("other-project", "testing"))
}

func TestCatalog(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	catalog := testCatalog()

	dataset := sql.DatasetID{Project: "ibis-gbq", Dataset: "testing"}
	ok, err := catalog.DatasetExists(ctx, dataset)
	require.NoError(err)
	require.True(ok)

	ok, err = catalog.DatasetExists(ctx, sql.DatasetID{Project: "ibis-gbq", Dataset: "missing"})
	require.NoError(err)
	require.False(ok)

	require.Equal([]sql.DatasetID{
		{Project: "ibis-gbq", Dataset: "testing"},
		{Project: "other-project", Dataset: "testing"},
	}, catalog.Datasets())

	names, err := catalog.ListTables(ctx, dataset)
	require.NoError(err)
	require.Equal([]string{"date_column_parted", "functional_alltypes", "functional_alltypes_parted"}, names)

	_, err = catalog.ListTables(ctx, sql.DatasetID{Dataset: "missing"})
	require.True(sql.ErrDatasetNotFound.Is(err))

	meta, err := catalog.Describe(ctx, sql.TableID{Project: "ibis-gbq", Dataset: "testing", Name: "functional_alltypes"})
	require.NoError(err)
	require.Equal("ibis-gbq.testing.functional_alltypes", meta.ID.String())
	require.Equal("functional_alltypes", meta.Schema[0].Source)
	require.False(meta.Partitioned())

	meta, err = catalog.Describe(ctx, sql.TableID{Project: "ibis-gbq", Dataset: "testing", Name: "functional_alltypes_parted"})
	require.NoError(err)
	require.True(meta.IngestionTime)
	require.Equal([]string{"int_col", sql.PartitionTimeColumn}, meta.TableSchema().Names())

	meta, err = catalog.Describe(ctx, sql.TableID{Project: "ibis-gbq", Dataset: "testing", Name: "date_column_parted"})
	require.NoError(err)
	require.Equal("my_date_parted_col", meta.PartitionColumn)
	require.True(meta.TableSchema()[0].Partition)

	_, err = catalog.Describe(ctx, sql.TableID{Project: "ibis-gbq", Dataset: "testing", Name: "missing"})
	require.True(sql.ErrTableNotFound.Is(err))

	_, err = catalog.Describe(ctx, sql.TableID{Project: "ibis-gbq", Dataset: "testing", Name: "functional_alltype"})
	require.EqualError(err, "table not found: ibis-gbq.testing.functional_alltype, maybe you mean functional_alltypes?")
}

func TestEngine(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	engine := mem.NewEngine()
	engine.Respond("SELECT 1", sql.Schema{{Name: "f0_", Type: sql.Int64}}, []interface{}{"1"})
	engine.Fail("SELECT x", fmt.Errorf("unrecognized name: x"))

	req, err := remote.NewRequest("SELECT 1", "", "")
	require.NoError(err)

	res, err := engine.Query(ctx, req)
	require.NoError(err)

	table, err := remote.Materialize(res, nil)
	require.NoError(err)
	require.Equal([]sql.Row{{int64(1)}}, table.Rows)

	failing, err := remote.NewRequest("SELECT x", "", "")
	require.NoError(err)
	_, err = engine.Query(ctx, failing)
	require.EqualError(err, "unrecognized name: x")

	unknown, err := remote.NewRequest("SELECT 2", "", "")
	require.NoError(err)
	_, err = engine.Query(ctx, unknown)
	require.True(mem.ErrNoResponse.Is(err))

	engine.HandleAll(func(_ context.Context, req *remote.Request) (remote.Result, error) {
		return &remote.Rows{Values: [][]interface{}{{req.SQL}}}, nil
	})
	res, err = engine.Query(ctx, unknown)
	require.NoError(err)
	table, err = remote.Materialize(res, nil)
	require.NoError(err)
	require.Equal([]sql.Row{{"SELECT 2"}}, table.Rows)

	requests := engine.Requests()
	require.Len(requests, 4)
	require.Equal(req.JobID, requests[0].JobID)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = engine.Query(cancelled, req)
	require.Equal(context.Canceled, err)
}

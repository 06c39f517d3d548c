package remote

import (
	"github.com/apache/arrow-go/v18/arrow/array"
	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// ErrUnknownResult is returned when materializing a result of an unknown
// kind.
var ErrUnknownResult = errors.NewKind("unknown result of type %T")

// Result is what an engine returns after running a query: either *Rows or
// *Records.
type Result interface {
	// Close releases the resources held by the result.
	Close() error
}

// Rows is a result given as raw values, one slice per row.
type Rows struct {
	// Schema of the rows, if known by the engine.
	Schema sql.Schema
	Values [][]interface{}
}

// Close implements the Result interface.
func (*Rows) Close() error {
	return nil
}

// Records is a columnar result.
type Records struct {
	Reader array.RecordReader
}

// Close implements the Result interface.
func (r *Records) Close() error {
	r.Reader.Release()
	return nil
}

// Materialize reads the whole result and decodes its values into the
// canonical representation of the columns of the schema. If the schema is
// nil, the schema of the result is used. The result is closed.
func Materialize(res Result, schema sql.Schema) (*sql.ResultTable, error) {
	defer res.Close()

	switch res := res.(type) {
	case *Rows:
		return materializeRows(res, schema)
	case *Records:
		return materializeRecords(res, schema)
	default:
		return nil, ErrUnknownResult.New(res)
	}
}

func materializeRows(res *Rows, schema sql.Schema) (*sql.ResultTable, error) {
	if schema == nil {
		schema = res.Schema
	}

	if schema == nil {
		var err error
		if schema, err = inferSchema(res.Values); err != nil {
			return nil, err
		}
	}

	table := &sql.ResultTable{Schema: schema, Rows: make([]sql.Row, 0, len(res.Values))}
	for _, values := range res.Values {
		if len(values) != len(schema) {
			return nil, sql.ErrUnexpectedRowLength.New(len(schema), len(values))
		}

		row := make(sql.Row, len(values))
		for i, v := range values {
			decoded, err := sql.Decode(v, schema[i].Type)
			if err != nil {
				return nil, err
			}
			row[i] = decoded
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// inferSchema builds a schema for rows without one, taking the type of each
// column from its first non NULL value.
func inferSchema(rows [][]interface{}) (sql.Schema, error) {
	if len(rows) == 0 {
		return sql.Schema{}, nil
	}

	schema := make(sql.Schema, len(rows[0]))
	for i := range schema {
		schema[i] = &sql.Column{Name: defaultColumnName(i), Type: sql.String, Nullable: true}
		for _, row := range rows {
			if i >= len(row) || row[i] == nil {
				continue
			}

			t, err := sql.TypeOf(row[i])
			if err != nil {
				return nil, err
			}
			schema[i].Type = t
			break
		}
	}
	return schema, nil
}

func materializeRecords(res *Records, schema sql.Schema) (*sql.ResultTable, error) {
	if schema == nil {
		var err error
		if schema, err = SchemaFromArrow(res.Reader.Schema()); err != nil {
			return nil, err
		}
	}

	if n := res.Reader.Schema().NumFields(); n != len(schema) {
		return nil, sql.ErrUnexpectedRowLength.New(len(schema), n)
	}

	table := &sql.ResultTable{Schema: schema}
	for res.Reader.Next() {
		rec := res.Reader.RecordBatch()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make(sql.Row, len(schema))
			for j, col := range schema {
				raw, err := arrowValue(rec.Column(j), i)
				if err != nil {
					return nil, err
				}

				if row[j], err = sql.Decode(raw, col.Type); err != nil {
					return nil, err
				}
			}
			table.Rows = append(table.Rows, row)
		}
	}

	if err := res.Reader.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

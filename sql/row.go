package sql

import "gopkg.in/src-d/go-bqsql.v0/internal/similartext"

// Row is a tuple of values.
type Row []interface{}

// NewRow creates a row from the given values.
func NewRow(values ...interface{}) Row {
	row := make([]interface{}, len(values))
	copy(row, values)
	return row
}

// Copy creates a new row with the same values as the current one.
func (r Row) Copy() Row {
	return NewRow(r...)
}

// ResultTable is a materialized relation: a schema and rows whose values
// are in the canonical representation of the column types.
type ResultTable struct {
	Schema Schema
	Rows   []Row
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	return len(t.Rows)
}

// Column returns all the values of the column with the given name.
func (t *ResultTable) Column(name string) ([]interface{}, error) {
	idx := t.Schema.IndexOf(name)
	if idx < 0 {
		return nil, ErrColumnNotFound.New("result", name, similartext.Find(t.Schema.Names(), name))
	}

	values := make([]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Scalar returns the only value of a result with one row and one column.
func (t *ResultTable) Scalar() (interface{}, error) {
	if len(t.Schema) != 1 || len(t.Rows) != 1 {
		return nil, ErrUnexpectedRowLength.New(1, len(t.Rows)*len(t.Schema))
	}
	return t.Rows[0][0], nil
}

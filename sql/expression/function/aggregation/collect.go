package aggregation

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Collect aggregates the values of a column into an array.
type Collect struct {
	unaryAggregation
}

var _ sql.Aggregation = (*Collect)(nil)

// NewCollect creates a new Collect node. Arrays can't be collected since
// arrays of arrays are not supported.
func NewCollect(e, where sql.Expression) (*Collect, error) {
	agg, err := newUnaryAggregation("collect", e, where)
	if err != nil {
		return nil, err
	}

	if e.Type().Kind() == sql.KindArray {
		return nil, sql.ErrTypeMismatch.New("collect", fmt.Sprintf("%s is %s", e, e.Type()))
	}

	return &Collect{agg}, nil
}

// Type implements the Expression interface.
func (c *Collect) Type() sql.Type {
	return sql.CreateArray(c.Child.Type())
}

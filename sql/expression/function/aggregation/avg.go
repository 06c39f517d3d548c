package aggregation

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Mean node to calculate the average of a numeric column.
type Mean struct {
	unaryAggregation
}

var _ sql.Aggregation = (*Mean)(nil)

// NewMean creates a new Mean node.
func NewMean(e, where sql.Expression) (*Mean, error) {
	agg, err := newUnaryAggregation("mean", e, where)
	if err != nil {
		return nil, err
	}

	if !sql.IsNumber(e.Type()) && e.Type().Kind() != sql.KindBoolean {
		return nil, sql.ErrTypeMismatch.New("mean", fmt.Sprintf("%s is %s", e, e.Type()))
	}

	return &Mean{agg}, nil
}

// Type implements the Expression interface.
func (*Mean) Type() sql.Type {
	return sql.Float64
}

package aggregation

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Sum aggregation returns the sum of all values of a numeric column.
type Sum struct {
	unaryAggregation
}

var _ sql.Aggregation = (*Sum)(nil)

// NewSum returns a new Sum node. Booleans are summed as integers.
func NewSum(e, where sql.Expression) (*Sum, error) {
	agg, err := newUnaryAggregation("sum", e, where)
	if err != nil {
		return nil, err
	}

	t := e.Type()
	if !sql.IsNumber(t) && t.Kind() != sql.KindBoolean {
		return nil, sql.ErrTypeMismatch.New("sum", fmt.Sprintf("%s is %s", e, t))
	}

	return &Sum{agg}, nil
}

// Type returns the resultant type of the aggregation.
func (m *Sum) Type() sql.Type {
	if m.Child.Type().Kind() == sql.KindFloat64 {
		return sql.Float64
	}
	return sql.Int64
}

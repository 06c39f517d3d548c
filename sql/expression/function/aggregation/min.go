package aggregation

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

func checkOrderable(fn string, e sql.Expression) error {
	switch e.Type().Kind() {
	case sql.KindStruct, sql.KindArray, sql.KindTable:
		return sql.ErrTypeMismatch.New(fn, fmt.Sprintf("%s is %s", e, e.Type()))
	}
	return nil
}

// Min aggregation returns the smallest value of the selected column.
type Min struct {
	unaryAggregation
}

var _ sql.Aggregation = (*Min)(nil)

// NewMin returns a new Min node.
func NewMin(e, where sql.Expression) (*Min, error) {
	agg, err := newUnaryAggregation("min", e, where)
	if err != nil {
		return nil, err
	}

	if err := checkOrderable("min", e); err != nil {
		return nil, err
	}

	return &Min{agg}, nil
}

// Type returns the resultant type of the aggregation.
func (m *Min) Type() sql.Type {
	return m.Child.Type()
}

// Max aggregation returns the greatest value of the selected column.
type Max struct {
	unaryAggregation
}

var _ sql.Aggregation = (*Max)(nil)

// NewMax returns a new Max node.
func NewMax(e, where sql.Expression) (*Max, error) {
	agg, err := newUnaryAggregation("max", e, where)
	if err != nil {
		return nil, err
	}

	if err := checkOrderable("max", e); err != nil {
		return nil, err
	}

	return &Max{agg}, nil
}

// Type returns the resultant type of the aggregation.
func (m *Max) Type() sql.Type {
	return m.Child.Type()
}

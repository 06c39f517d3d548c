package aggregation

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

// unaryAggregation is the common part of the aggregations of a single
// column with an optional filter of the aggregated rows.
type unaryAggregation struct {
	expression.UnaryExpression
	fn    string
	where sql.Expression
}

func newUnaryAggregation(fn string, child, where sql.Expression) (unaryAggregation, error) {
	if child == nil {
		return unaryAggregation{}, sql.ErrTypeMismatch.New(fn, "missing operand 0")
	}

	if err := checkWhere(fn, expression.Tables(child), where); err != nil {
		return unaryAggregation{}, err
	}

	return unaryAggregation{
		UnaryExpression: expression.NewUnaryExpression(child),
		fn:              fn,
		where:           where,
	}, nil
}

// checkWhere validates that the filter of an aggregation is a boolean
// expression taking its values from the aggregated tables.
func checkWhere(fn string, tables []sql.Node, where sql.Expression) error {
	if where == nil {
		return nil
	}

	if where.Type().Kind() != sql.KindBoolean {
		return sql.ErrTypeMismatch.New(fn, fmt.Sprintf("filter %s is %s, not boolean", where, where.Type()))
	}

	allowed := mapset.NewThreadUnsafeSet[sql.NodeID]()
	for _, t := range tables {
		allowed.Add(t.ID())
	}

	for _, t := range expression.Tables(where) {
		if !allowed.Contains(t.ID()) {
			return sql.ErrForeignColumn.New(where.String(), t.String(), fn)
		}
	}

	return nil
}

// FunctionName implements the sql.Aggregation interface.
func (a *unaryAggregation) FunctionName() string {
	return a.fn
}

// Where implements the sql.Aggregation interface.
func (a *unaryAggregation) Where() sql.Expression {
	return a.where
}

// Name implements the Expression interface.
func (a *unaryAggregation) Name() string {
	return a.fn
}

// Children implements the Expression interface. The filter, if any, is the
// last child.
func (a *unaryAggregation) Children() []sql.Expression {
	if a.where == nil {
		return []sql.Expression{a.Child}
	}
	return []sql.Expression{a.Child, a.where}
}

func (a *unaryAggregation) String() string {
	if a.where == nil {
		return fmt.Sprintf("%s(%s)", a.fn, a.Child)
	}
	return fmt.Sprintf("%s(%s where %s)", a.fn, a.Child, a.where)
}

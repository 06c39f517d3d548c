package plan

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

// Aggregate groups the rows of a node by some keys, computing a set of
// metrics for each group.
type Aggregate struct {
	UnaryNode
	// Keys the rows are grouped by.
	Keys []sql.Expression
	// Metrics computed for each group. All of them are reductions.
	Metrics []sql.Expression
	schema  sql.Schema
}

var _ sql.Node = (*Aggregate)(nil)

// NewAggregate creates a new Aggregate node. With no keys the whole child is
// reduced to a single row.
func NewAggregate(child sql.Node, keys, metrics []sql.Expression) (*Aggregate, error) {
	if err := checkNotNil("aggregate", child); err != nil {
		return nil, err
	}

	if len(keys)+len(metrics) == 0 {
		return nil, sql.ErrInvalidNode.New(child, "aggregate without keys or metrics")
	}

	for _, k := range keys {
		if k == nil || expression.IsReduction(k) {
			return nil, sql.ErrTypeMismatch.New("aggregate", fmt.Sprintf("invalid grouping key %v", k))
		}
	}

	for _, m := range metrics {
		if m == nil || !expression.IsReduction(m) {
			return nil, sql.ErrTypeMismatch.New("aggregate", fmt.Sprintf("metric %v is not a reduction", m))
		}
	}

	all := append(append([]sql.Expression{}, keys...), metrics...)
	if err := checkScope("aggregate", []sql.Node{child}, all...); err != nil {
		return nil, err
	}

	schema := schemaOf(all, "")
	if err := checkUniqueNames("aggregate", schema); err != nil {
		return nil, err
	}

	return &Aggregate{
		UnaryNode: newUnaryNode(child),
		Keys:      keys,
		Metrics:   metrics,
		schema:    schema,
	}, nil
}

// Schema implements the Node interface.
func (a *Aggregate) Schema() sql.Schema {
	return a.schema
}

// Expressions implements the Node interface. Keys come before metrics.
func (a *Aggregate) Expressions() []sql.Expression {
	return append(append([]sql.Expression{}, a.Keys...), a.Metrics...)
}

func (a *Aggregate) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Aggregate")
	_ = pr.WriteChildren(
		fmt.Sprintf("Metrics(%s)", expressionStrings(a.Metrics)),
		fmt.Sprintf("Grouping(%s)", expressionStrings(a.Keys)),
		a.Child.String(),
	)
	return pr.String()
}

package aggregation

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Count node to count how many non null values a column has.
type Count struct {
	unaryAggregation
}

var _ sql.Aggregation = (*Count)(nil)

// NewCount creates a new Count node.
func NewCount(e, where sql.Expression) (*Count, error) {
	agg, err := newUnaryAggregation("count", e, where)
	if err != nil {
		return nil, err
	}
	return &Count{agg}, nil
}

// Type returns the type of the result.
func (*Count) Type() sql.Type {
	return sql.Int64
}

// CountRows node to count how many rows a table has.
type CountRows struct {
	id    sql.NodeID
	table sql.Node
	where sql.Expression
}

var _ sql.Aggregation = (*CountRows)(nil)

// NewCountRows creates a new CountRows node over the given table.
func NewCountRows(table sql.Node, where sql.Expression) (*CountRows, error) {
	if table == nil {
		return nil, sql.ErrTypeMismatch.New("count", "missing table")
	}

	if err := checkWhere("count", []sql.Node{table}, where); err != nil {
		return nil, err
	}

	return &CountRows{id: sql.NewNodeID(), table: table, where: where}, nil
}

// ID implements the sql.Root interface.
func (c *CountRows) ID() sql.NodeID {
	return c.id
}

// Table returns the counted table.
func (c *CountRows) Table() sql.Node {
	return c.table
}

// FunctionName implements the sql.Aggregation interface.
func (*CountRows) FunctionName() string {
	return "count"
}

// Where implements the sql.Aggregation interface.
func (c *CountRows) Where() sql.Expression {
	return c.where
}

// Name implements the Expression interface.
func (*CountRows) Name() string {
	return "count"
}

// Type implements the Expression interface.
func (*CountRows) Type() sql.Type {
	return sql.Int64
}

// Children implements the Expression interface.
func (c *CountRows) Children() []sql.Expression {
	if c.where == nil {
		return nil
	}
	return []sql.Expression{c.where}
}

func (c *CountRows) String() string {
	if c.where == nil {
		return fmt.Sprintf("count(%s)", c.table)
	}
	return fmt.Sprintf("count(%s where %s)", c.table, c.where)
}

// NUnique node to count the distinct non null values of a column.
type NUnique struct {
	unaryAggregation
}

var _ sql.Aggregation = (*NUnique)(nil)

// NewNUnique creates a new NUnique node.
func NewNUnique(e, where sql.Expression) (*NUnique, error) {
	agg, err := newUnaryAggregation("nunique", e, where)
	if err != nil {
		return nil, err
	}
	return &NUnique{agg}, nil
}

// Type returns the type of the result.
func (*NUnique) Type() sql.Type {
	return sql.Int64
}

package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// DefaultName is the name given to expressions without a natural one.
const DefaultName = "tmp"

// node holds the identity shared by every expression.
type node struct {
	id sql.NodeID
}

func newNode() node {
	return node{id: sql.NewNodeID()}
}

// ID implements the Root interface.
func (n node) ID() sql.NodeID {
	return n.id
}

// IsUnary returns whether the expression is unary or not.
func IsUnary(e sql.Expression) bool {
	return len(e.Children()) == 1
}

// IsBinary returns whether the expression is binary or not.
func IsBinary(e sql.Expression) bool {
	return len(e.Children()) == 2
}

// UnaryExpression is an expression that has only one children.
type UnaryExpression struct {
	node
	Child sql.Expression
}

func newUnary(child sql.Expression) UnaryExpression {
	return UnaryExpression{node: newNode(), Child: child}
}

// NewUnaryExpression creates a new UnaryExpression with its own identity,
// to be embedded by expressions of other packages.
func NewUnaryExpression(child sql.Expression) UnaryExpression {
	return newUnary(child)
}

// Children implements the Expression interface.
func (p *UnaryExpression) Children() []sql.Expression {
	return []sql.Expression{p.Child}
}

// Name implements the Expression interface.
func (p *UnaryExpression) Name() string {
	return DefaultName
}

// BinaryExpression is an expression that has two children.
type BinaryExpression struct {
	node
	Left  sql.Expression
	Right sql.Expression
}

func newBinary(left, right sql.Expression) BinaryExpression {
	return BinaryExpression{node: newNode(), Left: left, Right: right}
}

// Children implements the Expression interface.
func (p *BinaryExpression) Children() []sql.Expression {
	return []sql.Expression{p.Left, p.Right}
}

// Name implements the Expression interface.
func (p *BinaryExpression) Name() string {
	return DefaultName
}

func checkOperands(op string, operands ...sql.Expression) error {
	for i, o := range operands {
		if o == nil {
			return sql.ErrTypeMismatch.New(op, fmt.Sprintf("missing operand %d", i))
		}
	}
	return nil
}

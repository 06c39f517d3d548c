package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

func checkBoolean(op string, operands ...sql.Expression) error {
	if err := checkOperands(op, operands...); err != nil {
		return err
	}

	for _, o := range operands {
		if o.Type().Kind() != sql.KindBoolean {
			return sql.ErrTypeMismatch.New(op, fmt.Sprintf("%s is %s, not boolean", o, o.Type()))
		}
	}
	return nil
}

// And checks whether two expressions are true.
type And struct {
	BinaryExpression
}

var _ sql.Expression = (*And)(nil)

// NewAnd creates a new And expression.
func NewAnd(left, right sql.Expression) (*And, error) {
	if err := checkBoolean("AND", left, right); err != nil {
		return nil, err
	}
	return &And{newBinary(left, right)}, nil
}

// JoinAnd joins several predicates with And. It returns nil if there are
// no predicates.
func JoinAnd(exprs ...sql.Expression) (sql.Expression, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	result := exprs[0]
	if err := checkBoolean("AND", result); err != nil {
		return nil, err
	}

	for _, e := range exprs[1:] {
		and, err := NewAnd(result, e)
		if err != nil {
			return nil, err
		}
		result = and
	}
	return result, nil
}

// Type implements the Expression interface.
func (*And) Type() sql.Type {
	return sql.Boolean
}

func (a *And) String() string {
	return fmt.Sprintf("%s AND %s", a.Left, a.Right)
}

// Or checks whether one of the two given expressions is true.
type Or struct {
	BinaryExpression
}

var _ sql.Expression = (*Or)(nil)

// NewOr creates a new Or expression.
func NewOr(left, right sql.Expression) (*Or, error) {
	if err := checkBoolean("OR", left, right); err != nil {
		return nil, err
	}
	return &Or{newBinary(left, right)}, nil
}

// Type implements the Expression interface.
func (*Or) Type() sql.Type {
	return sql.Boolean
}

func (o *Or) String() string {
	return fmt.Sprintf("%s OR %s", o.Left, o.Right)
}

// Not is a node that negates an expression.
type Not struct {
	UnaryExpression
}

var _ sql.Expression = (*Not)(nil)

// NewNot returns a new Not node.
func NewNot(child sql.Expression) (*Not, error) {
	if err := checkBoolean("NOT", child); err != nil {
		return nil, err
	}
	return &Not{newUnary(child)}, nil
}

// Type implements the Expression interface.
func (*Not) Type() sql.Type {
	return sql.Boolean
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT %s", n.Child)
}

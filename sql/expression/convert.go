package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Cast represents a conversion of an expression to another type.
type Cast struct {
	UnaryExpression
	castType sql.Type
}

var _ sql.Expression = (*Cast)(nil)

// NewCast creates a new Cast expression. Only the conversions allowed by
// sql.CanCast are accepted.
func NewCast(expr sql.Expression, castType sql.Type) (*Cast, error) {
	if err := checkOperands("CAST", expr); err != nil {
		return nil, err
	}

	if castType == nil {
		return nil, sql.ErrInvalidType.New("nil")
	}

	if !sql.CanCast(expr.Type(), castType) {
		return nil, sql.ErrUnsupportedCast.New(expr, expr.Type(), castType)
	}

	return &Cast{newUnary(expr), castType}, nil
}

// Type implements the Expression interface.
func (c *Cast) Type() sql.Type {
	return c.castType
}

// Name implements the Expression interface. A cast keeps the name of the
// expression being converted.
func (c *Cast) Name() string {
	return c.Child.Name()
}

func (c *Cast) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", c.Child, c.castType)
}

package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// IsNull is an expression that checks if an expression is null.
type IsNull struct {
	UnaryExpression
	negated bool
}

var _ sql.Expression = (*IsNull)(nil)

// NewIsNull creates a new IsNull expression.
func NewIsNull(child sql.Expression) (*IsNull, error) {
	if err := checkOperands("IS NULL", child); err != nil {
		return nil, err
	}
	return &IsNull{newUnary(child), false}, nil
}

// NewNotNull creates a new expression checking that an expression is not
// null.
func NewNotNull(child sql.Expression) (*IsNull, error) {
	if err := checkOperands("IS NOT NULL", child); err != nil {
		return nil, err
	}
	return &IsNull{newUnary(child), true}, nil
}

// Negated reports whether the expression checks for non null values.
func (e *IsNull) Negated() bool {
	return e.negated
}

// Type implements the Expression interface.
func (*IsNull) Type() sql.Type {
	return sql.Boolean
}

func (e *IsNull) String() string {
	if e.negated {
		return e.Child.String() + " IS NOT NULL"
	}
	return e.Child.String() + " IS NULL"
}

// IfNull returns the value of an expression or a replacement if it's null.
type IfNull struct {
	BinaryExpression
	typ sql.Type
}

var _ sql.Expression = (*IfNull)(nil)

// NewIfNull creates a new IfNull expression. Both operands must have
// compatible types.
func NewIfNull(expr, replacement sql.Expression) (*IfNull, error) {
	if err := checkOperands("IFNULL", expr, replacement); err != nil {
		return nil, err
	}

	typ, ok := sql.CommonType(expr.Type(), replacement.Type())
	if !ok {
		return nil, sql.ErrTypeMismatch.New(
			"IFNULL",
			fmt.Sprintf("%s and %s", expr.Type(), replacement.Type()),
		)
	}

	return &IfNull{newBinary(expr, replacement), typ}, nil
}

// Type implements the Expression interface.
func (e *IfNull) Type() sql.Type {
	return e.typ
}

func (e *IfNull) String() string {
	return fmt.Sprintf("IFNULL(%s, %s)", e.Left, e.Right)
}

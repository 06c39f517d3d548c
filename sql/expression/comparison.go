package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Comparison operators.
const (
	EqualsOp             = "="
	NotEqualsOp          = "!="
	LessThanOp           = "<"
	LessThanOrEqualOp    = "<="
	GreaterThanOp        = ">"
	GreaterThanOrEqualOp = ">="
)

// Comparison is an expression that compares an expression against another.
type Comparison struct {
	BinaryExpression
	Op string
}

var _ sql.Expression = (*Comparison)(nil)

// NewComparison creates a new comparison between two expressions.
func NewComparison(left, right sql.Expression, op string) (*Comparison, error) {
	if err := checkOperands(op, left, right); err != nil {
		return nil, err
	}

	switch op {
	case EqualsOp, NotEqualsOp:
	case LessThanOp, LessThanOrEqualOp, GreaterThanOp, GreaterThanOrEqualOp:
		if !orderable(left.Type()) {
			return nil, sql.ErrTypeMismatch.New(op, left.Type().String()+" is not orderable")
		}
	default:
		return nil, sql.ErrUnsupportedOperation.New(op, "comparison")
	}

	if !sql.IsCompatible(left.Type(), right.Type()) {
		return nil, sql.ErrTypeMismatch.New(op, fmt.Sprintf("%s and %s", left.Type(), right.Type()))
	}

	return &Comparison{newBinary(left, right), op}, nil
}

func orderable(t sql.Type) bool {
	switch t.Kind() {
	case sql.KindStruct, sql.KindArray, sql.KindTable:
		return false
	default:
		return true
	}
}

// NewEquals returns a new = expression.
func NewEquals(left, right sql.Expression) (*Comparison, error) {
	return NewComparison(left, right, EqualsOp)
}

// NewNotEquals returns a new != expression.
func NewNotEquals(left, right sql.Expression) (*Comparison, error) {
	return NewComparison(left, right, NotEqualsOp)
}

// NewLessThan returns a new < expression.
func NewLessThan(left, right sql.Expression) (*Comparison, error) {
	return NewComparison(left, right, LessThanOp)
}

// NewLessThanOrEqual returns a new <= expression.
func NewLessThanOrEqual(left, right sql.Expression) (*Comparison, error) {
	return NewComparison(left, right, LessThanOrEqualOp)
}

// NewGreaterThan returns a new > expression.
func NewGreaterThan(left, right sql.Expression) (*Comparison, error) {
	return NewComparison(left, right, GreaterThanOp)
}

// NewGreaterThanOrEqual returns a new >= expression.
func NewGreaterThanOrEqual(left, right sql.Expression) (*Comparison, error) {
	return NewComparison(left, right, GreaterThanOrEqualOp)
}

// Type implements the Expression interface.
func (*Comparison) Type() sql.Type {
	return sql.Boolean
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

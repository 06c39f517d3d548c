package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Arithmetic operators.
const (
	PlusOp  = "+"
	MinusOp = "-"
	MultOp  = "*"
	DivOp   = "/"
	ModOp   = "%"
)

// Arithmetic expressions (+, -, *, /, %). The plus operator also
// concatenates strings and arrays.
type Arithmetic struct {
	BinaryExpression
	Op  string
	typ sql.Type
}

var _ sql.Expression = (*Arithmetic)(nil)

// NewArithmetic creates a new Arithmetic expression, checking the operands
// are valid for the operator.
func NewArithmetic(left, right sql.Expression, op string) (*Arithmetic, error) {
	if err := checkOperands(op, left, right); err != nil {
		return nil, err
	}

	typ, err := arithmeticType(left.Type(), right.Type(), op)
	if err != nil {
		return nil, err
	}

	return &Arithmetic{newBinary(left, right), op, typ}, nil
}

func arithmeticType(l, r sql.Type, op string) (sql.Type, error) {
	mismatch := func() error {
		return sql.ErrTypeMismatch.New(op, fmt.Sprintf("%s and %s", l, r))
	}

	switch op {
	case PlusOp:
		if l.Kind() == sql.KindString && r.Kind() == sql.KindString {
			return sql.String, nil
		}

		if l.Kind() == sql.KindArray || r.Kind() == sql.KindArray {
			if !l.Equals(r) {
				return nil, mismatch()
			}
			return l, nil
		}
		fallthrough
	case MinusOp, MultOp:
		if !sql.IsNumber(l) || !sql.IsNumber(r) {
			return nil, mismatch()
		}
		t, _ := sql.CommonType(l, r)
		return t, nil
	case DivOp:
		if !sql.IsNumber(l) || !sql.IsNumber(r) {
			return nil, mismatch()
		}
		return sql.Float64, nil
	case ModOp:
		if l.Kind() != sql.KindInt64 || r.Kind() != sql.KindInt64 {
			return nil, mismatch()
		}
		return sql.Int64, nil
	default:
		return nil, sql.ErrUnsupportedOperation.New(op, "arithmetic")
	}
}

// NewPlus creates a new Arithmetic + expression.
func NewPlus(left, right sql.Expression) (*Arithmetic, error) {
	return NewArithmetic(left, right, PlusOp)
}

// NewMinus creates a new Arithmetic - expression.
func NewMinus(left, right sql.Expression) (*Arithmetic, error) {
	return NewArithmetic(left, right, MinusOp)
}

// NewMult creates a new Arithmetic * expression.
func NewMult(left, right sql.Expression) (*Arithmetic, error) {
	return NewArithmetic(left, right, MultOp)
}

// NewDiv creates a new Arithmetic / expression. The result is always a
// Float64.
func NewDiv(left, right sql.Expression) (*Arithmetic, error) {
	return NewArithmetic(left, right, DivOp)
}

// NewMod creates a new Arithmetic % expression.
func NewMod(left, right sql.Expression) (*Arithmetic, error) {
	return NewArithmetic(left, right, ModOp)
}

// IsConcat reports whether the expression concatenates two strings.
func (a *Arithmetic) IsConcat() bool {
	return a.Op == PlusOp && a.typ.Kind() == sql.KindString
}

// IsArrayConcat reports whether the expression concatenates two arrays.
func (a *Arithmetic) IsArrayConcat() bool {
	return a.Op == PlusOp && a.typ.Kind() == sql.KindArray
}

// Type returns the resulting type of the operation.
func (a *Arithmetic) Type() sql.Type {
	return a.typ
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Op, a.Right)
}

// Negate is the numeric negation of an expression.
type Negate struct {
	UnaryExpression
}

var _ sql.Expression = (*Negate)(nil)

// NewNegate creates a new Negate expression.
func NewNegate(e sql.Expression) (*Negate, error) {
	if err := checkOperands("negate", e); err != nil {
		return nil, err
	}

	if !sql.IsNumber(e.Type()) {
		return nil, sql.ErrTypeMismatch.New("negate", e.Type().String())
	}

	return &Negate{newUnary(e)}, nil
}

// Type implements the Expression interface.
func (n *Negate) Type() sql.Type {
	return n.Child.Type()
}

func (n *Negate) String() string {
	return fmt.Sprintf("-%s", n.Child)
}

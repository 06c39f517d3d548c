package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Literal represents a literal expression (string, number, bool, ...).
type Literal struct {
	node
	value     interface{}
	fieldType sql.Type
}

var _ sql.Expression = (*Literal)(nil)

// NewLiteral creates a new Literal expression of the given type. The value
// is coerced to the canonical representation of the type.
func NewLiteral(value interface{}, fieldType sql.Type) (*Literal, error) {
	v, err := sql.Coerce(value, fieldType)
	if err != nil {
		return nil, err
	}

	return &Literal{node: newNode(), value: v, fieldType: fieldType}, nil
}

// InferLiteral creates a new Literal expression inferring its type from the
// value.
func InferLiteral(value interface{}) (*Literal, error) {
	t, err := sql.TypeOf(value)
	if err != nil {
		return nil, err
	}
	return NewLiteral(value, t)
}

// MustLiteral is like InferLiteral but panics on error. It's meant to be
// used with constant values.
func MustLiteral(value interface{}) *Literal {
	l, err := InferLiteral(value)
	if err != nil {
		panic(err)
	}
	return l
}

// Type implements the Expression interface.
func (p *Literal) Type() sql.Type {
	return p.fieldType
}

// Value returns the canonical value of the literal.
func (p *Literal) Value() interface{} {
	return p.value
}

// Name implements the Expression interface.
func (p *Literal) Name() string {
	return DefaultName
}

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression {
	return nil
}

func (p *Literal) String() string {
	switch v := p.value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

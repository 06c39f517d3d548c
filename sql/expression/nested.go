package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// GetField is an expression to get a field of a struct.
type GetField struct {
	UnaryExpression
	field sql.StructField
	index int
}

var _ sql.Expression = (*GetField)(nil)

// NewGetField creates a GetField expression accessing the field with the
// given name of a struct expression.
func NewGetField(expr sql.Expression, name string) (*GetField, error) {
	if err := checkOperands("field access", expr); err != nil {
		return nil, err
	}

	st, ok := expr.Type().(sql.StructType)
	if !ok {
		return nil, sql.ErrTypeMismatch.New("field access", fmt.Sprintf("%s is not a struct", expr.Type()))
	}

	field, idx, ok := st.Field(name)
	if !ok {
		return nil, sql.ErrFieldNotFound.New(st, name)
	}

	return &GetField{newUnary(expr), field, idx}, nil
}

// Index returns the position of the field in the struct.
func (p *GetField) Index() int {
	return p.index
}

// Type implements the Expression interface.
func (p *GetField) Type() sql.Type {
	return p.field.Type
}

// Name implements the Expression interface.
func (p *GetField) Name() string {
	return p.field.Name
}

func (p *GetField) String() string {
	return fmt.Sprintf("%s.%s", p.Child, p.field.Name)
}

// ArrayIndex is an expression that gets the element at a 0-based position
// of an array.
type ArrayIndex struct {
	BinaryExpression
}

var _ sql.Expression = (*ArrayIndex)(nil)

// NewArrayIndex creates a new ArrayIndex expression. The index must be an
// Int64 expression.
func NewArrayIndex(array, index sql.Expression) (*ArrayIndex, error) {
	if err := checkOperands("array index", array, index); err != nil {
		return nil, err
	}

	if _, ok := array.Type().(sql.ArrayType); !ok {
		return nil, sql.ErrTypeMismatch.New("array index", fmt.Sprintf("%s is not an array", array.Type()))
	}

	if index.Type().Kind() != sql.KindInt64 {
		return nil, sql.ErrTypeMismatch.New("array index", fmt.Sprintf("index of type %s", index.Type()))
	}

	return &ArrayIndex{newBinary(array, index)}, nil
}

// Type implements the Expression interface.
func (a *ArrayIndex) Type() sql.Type {
	return a.Left.Type().(sql.ArrayType).Elem
}

func (a *ArrayIndex) String() string {
	return fmt.Sprintf("%s[%s]", a.Left, a.Right)
}

// ArrayLength is an expression that returns the number of elements of an
// array.
type ArrayLength struct {
	UnaryExpression
}

var _ sql.Expression = (*ArrayLength)(nil)

// NewArrayLength creates a new ArrayLength expression.
func NewArrayLength(array sql.Expression) (*ArrayLength, error) {
	if err := checkOperands("array length", array); err != nil {
		return nil, err
	}

	if _, ok := array.Type().(sql.ArrayType); !ok {
		return nil, sql.ErrTypeMismatch.New("array length", fmt.Sprintf("%s is not an array", array.Type()))
	}

	return &ArrayLength{newUnary(array)}, nil
}

// Type implements the Expression interface.
func (*ArrayLength) Type() sql.Type {
	return sql.Int64
}

func (a *ArrayLength) String() string {
	return fmt.Sprintf("ARRAY_LENGTH(%s)", a.Child)
}

package expression

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

func checkString(op string, operands ...sql.Expression) error {
	if err := checkOperands(op, operands...); err != nil {
		return err
	}

	for _, o := range operands {
		if o.Type().Kind() != sql.KindString {
			return sql.ErrTypeMismatch.New(op, fmt.Sprintf("%s is %s, not string", o, o.Type()))
		}
	}
	return nil
}

// Find returns the 0-based position of a substring in a string, or -1 if
// it's not found.
type Find struct {
	BinaryExpression
}

var _ sql.Expression = (*Find)(nil)

// NewFind creates a new Find expression.
func NewFind(str, substr sql.Expression) (*Find, error) {
	if err := checkString("find", str, substr); err != nil {
		return nil, err
	}
	return &Find{newBinary(str, substr)}, nil
}

// Type implements the Expression interface.
func (*Find) Type() sql.Type {
	return sql.Int64
}

func (f *Find) String() string {
	return fmt.Sprintf("find(%s, %s)", f.Left, f.Right)
}

// NewContains creates an expression checking whether a string contains
// another, that is, the substring position is not negative.
func NewContains(str, substr sql.Expression) (*Comparison, error) {
	find, err := NewFind(str, substr)
	if err != nil {
		return nil, err
	}

	zero, err := NewLiteral(int64(0), sql.Int64)
	if err != nil {
		return nil, err
	}

	return NewGreaterThanOrEqual(find, zero)
}

// StringFunction is a function of a single string argument.
type StringFunction struct {
	UnaryExpression
	fn string
}

var _ sql.Expression = (*StringFunction)(nil)

// String functions.
const (
	LengthFunc = "length"
	LowerFunc  = "lower"
	UpperFunc  = "upper"
)

func newStringFunction(fn string, str sql.Expression) (*StringFunction, error) {
	if err := checkString(fn, str); err != nil {
		return nil, err
	}
	return &StringFunction{newUnary(str), fn}, nil
}

// NewLength creates an expression returning the number of characters of a
// string.
func NewLength(str sql.Expression) (*StringFunction, error) {
	return newStringFunction(LengthFunc, str)
}

// NewLower creates an expression converting a string to lower case.
func NewLower(str sql.Expression) (*StringFunction, error) {
	return newStringFunction(LowerFunc, str)
}

// NewUpper creates an expression converting a string to upper case.
func NewUpper(str sql.Expression) (*StringFunction, error) {
	return newStringFunction(UpperFunc, str)
}

// Function returns the name of the function.
func (f *StringFunction) Function() string {
	return f.fn
}

// Type implements the Expression interface.
func (f *StringFunction) Type() sql.Type {
	if f.fn == LengthFunc {
		return sql.Int64
	}
	return sql.String
}

func (f *StringFunction) String() string {
	return fmt.Sprintf("%s(%s)", f.fn, f.Child)
}

// Split splits a string by a delimiter into an array of strings.
type Split struct {
	BinaryExpression
}

var _ sql.Expression = (*Split)(nil)

// NewSplit creates a new Split expression.
func NewSplit(str, delimiter sql.Expression) (*Split, error) {
	if err := checkString("split", str, delimiter); err != nil {
		return nil, err
	}
	return &Split{newBinary(str, delimiter)}, nil
}

// Type implements the Expression interface.
func (*Split) Type() sql.Type {
	return sql.CreateArray(sql.String)
}

func (s *Split) String() string {
	return fmt.Sprintf("split(%s, %s)", s.Left, s.Right)
}

// StringJoin concatenates several strings using a separator.
type StringJoin struct {
	node
	Separator sql.Expression
	Parts     []sql.Expression
}

var _ sql.Expression = (*StringJoin)(nil)

// NewStringJoin creates a new StringJoin expression. There must be at least
// one part.
func NewStringJoin(sep sql.Expression, parts ...sql.Expression) (*StringJoin, error) {
	if len(parts) == 0 {
		return nil, sql.ErrTypeMismatch.New("string join", "no strings to join")
	}

	if err := checkString("string join", append([]sql.Expression{sep}, parts...)...); err != nil {
		return nil, err
	}

	return &StringJoin{node: newNode(), Separator: sep, Parts: parts}, nil
}

// Type implements the Expression interface.
func (*StringJoin) Type() sql.Type {
	return sql.String
}

// Name implements the Expression interface.
func (*StringJoin) Name() string {
	return DefaultName
}

// Children implements the Expression interface. The separator is the
// first child.
func (s *StringJoin) Children() []sql.Expression {
	return append([]sql.Expression{s.Separator}, s.Parts...)
}

func (s *StringJoin) String() string {
	parts := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s.join([%s])", s.Separator, strings.Join(parts, ", "))
}

package compiler

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression/function/aggregation"
)

// Precedence of the rendered fragments, from the loosest to the tightest.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdd
	precMult
	precUnary
	precAtom
)

var arithmeticPrec = map[string]int{
	expression.PlusOp:  precAdd,
	expression.MinusOp: precAdd,
	expression.MultOp:  precMult,
}

// FunctionCall is an expression calling a function that must be defined
// before the query runs, such as a user defined function.
type FunctionCall interface {
	sql.Expression
	// FunctionName is the name the function is called by.
	FunctionName() string
	// Arguments of the call.
	Arguments() []sql.Expression
	// Definition returns the statement defining the function in the given
	// dialect.
	Definition(d *Dialect) (string, error)
}

// fragment is a piece of rendered SQL and the precedence of its outermost
// operator.
type fragment struct {
	text string
	prec int
}

func atom(text string) fragment {
	return fragment{text, precAtom}
}

// wrap parenthesizes the fragment if it binds looser than prec.
func (f fragment) wrap(prec int) string {
	if f.prec < prec {
		return "(" + f.text + ")"
	}
	return f.text
}

func (c *compiler) expr(b *selectBlock, e sql.Expression) (fragment, error) {
	switch e := e.(type) {
	case *expression.Alias:
		return c.expr(b, e.Child)
	case *expression.Column:
		return atom(c.column(b, e)), nil
	case *expression.Literal:
		text, err := c.dialect.Literal(e.Value(), e.Type())
		if err != nil {
			return fragment{}, err
		}
		return literalFragment(text), nil
	case *expression.Parameter:
		return c.parameter(e)
	case *expression.Arithmetic:
		return c.arithmetic(b, e)
	case *expression.Negate:
		f, err := c.expr(b, e.Child)
		if err != nil {
			return fragment{}, err
		}
		text := f.wrap(precUnary)
		if strings.HasPrefix(text, "-") {
			text = "(" + text + ")"
		}
		return fragment{"-" + text, precUnary}, nil
	case *expression.Comparison:
		return c.infix(b, e.Op, precCompare, e.Left, e.Right, strict)
	case *expression.And:
		return c.infix(b, "AND", precAnd, e.Left, e.Right, loose)
	case *expression.Or:
		return c.infix(b, "OR", precOr, e.Left, e.Right, loose)
	case *expression.Not:
		f, err := c.expr(b, e.Child)
		if err != nil {
			return fragment{}, err
		}
		return fragment{"NOT " + f.wrap(precNot), precNot}, nil
	case *expression.IsNull:
		f, err := c.expr(b, e.Child)
		if err != nil {
			return fragment{}, err
		}
		op := " IS NULL"
		if e.Negated() {
			op = " IS NOT NULL"
		}
		return fragment{f.wrap(precCompare+1) + op, precCompare}, nil
	case *expression.IfNull:
		return c.call(b, fnIfNull, e.Left, e.Right)
	case *expression.Cast:
		return c.cast(b, e)
	case *expression.GetField:
		f, err := c.expr(b, e.Child)
		if err != nil {
			return fragment{}, err
		}
		return atom(f.wrap(precAtom) + "." + c.dialect.Quote(e.Name())), nil
	case *expression.ArrayIndex:
		return c.call(b, fnArrayIndex, e.Left, e.Right)
	case *expression.ArrayLength:
		return c.call(b, fnArrayLength, e.Child)
	case *expression.Find:
		return c.call(b, fnFind, e.Left, e.Right)
	case *expression.StringFunction:
		return c.call(b, e.Function(), e.Child)
	case *expression.Split:
		return c.call(b, fnSplit, e.Left, e.Right)
	case *expression.StringJoin:
		return c.stringJoin(b, e)
	case *aggregation.CountRows:
		if e.Where() == nil {
			return c.call(b, fnCountRows)
		}
		return c.call(b, fnCountIf, e.Where())
	case sql.Aggregation:
		return c.aggregation(b, e)
	case FunctionCall:
		return c.functionCall(b, e)
	default:
		return fragment{}, sql.ErrUnsupportedOperation.New(fmt.Sprintf("expression %T", e), c.dialect.name)
	}
}

func literalFragment(text string) fragment {
	if strings.HasPrefix(text, "-") {
		return fragment{text, precUnary}
	}
	return atom(text)
}

// column renders a column reference, qualified with the alias of the
// participant it comes from when the block joins several sources.
func (c *compiler) column(b *selectBlock, col *expression.Column) string {
	name := c.dialect.Quote(c.display(col.Source()))
	if b == nil || len(b.joins) == 0 {
		return name
	}

	if q := b.qualifier(col); q != "" {
		return q + "." + name
	}
	return name
}

func (c *compiler) parameter(p *expression.Parameter) (fragment, error) {
	if v, ok := c.bindings[p]; ok && !c.bindMode {
		text, err := c.dialect.Literal(v, p.Type())
		if err != nil {
			return fragment{}, err
		}
		return literalFragment(text), nil
	}
	return atom(c.dialect.Placeholder(c.names[p])), nil
}

type associativity bool

const (
	loose  associativity = false
	strict associativity = true
)

func (c *compiler) infix(
	b *selectBlock,
	op string,
	prec int,
	left, right sql.Expression,
	assoc associativity,
) (fragment, error) {
	l, err := c.expr(b, left)
	if err != nil {
		return fragment{}, err
	}

	r, err := c.expr(b, right)
	if err != nil {
		return fragment{}, err
	}

	operand := prec
	if assoc == strict {
		operand++
	}

	return fragment{l.wrap(operand) + " " + op + " " + r.wrap(operand), prec}, nil
}

func (c *compiler) arithmetic(b *selectBlock, e *expression.Arithmetic) (fragment, error) {
	switch {
	case e.IsConcat():
		return c.call(b, fnConcat, e.Left, e.Right)
	case e.IsArrayConcat():
		return c.call(b, fnArrayConcat, e.Left, e.Right)
	case e.Op == expression.DivOp:
		return c.call(b, fnDivide, e.Left, e.Right)
	case e.Op == expression.ModOp:
		return c.call(b, fnMod, e.Left, e.Right)
	}

	l, err := c.expr(b, e.Left)
	if err != nil {
		return fragment{}, err
	}

	r, err := c.expr(b, e.Right)
	if err != nil {
		return fragment{}, err
	}

	prec := arithmeticPrec[e.Op]
	rprec := prec
	if e.Op == expression.MinusOp {
		rprec++
	}
	return fragment{l.wrap(prec) + " " + e.Op + " " + r.wrap(rprec), prec}, nil
}

func (c *compiler) cast(b *selectBlock, e *expression.Cast) (fragment, error) {
	if e.Child.Type().Kind() == sql.KindTimestamp && e.Type().Kind() == sql.KindDate {
		return c.call(b, fnToDate, e.Child)
	}

	f, err := c.expr(b, e.Child)
	if err != nil {
		return fragment{}, err
	}

	name, err := c.dialect.TypeName(e.Type())
	if err != nil {
		return fragment{}, err
	}

	return c.format(fnCast, f, atom(name))
}

func (c *compiler) stringJoin(b *selectBlock, e *expression.StringJoin) (fragment, error) {
	parts := make([]string, len(e.Parts))
	for i, p := range e.Parts {
		f, err := c.expr(b, p)
		if err != nil {
			return fragment{}, err
		}
		parts[i] = f.text
	}

	sep, err := c.expr(b, e.Separator)
	if err != nil {
		return fragment{}, err
	}

	return c.format(fnStringJoin, atom(strings.Join(parts, ", ")), sep)
}

func (c *compiler) aggregation(b *selectBlock, e sql.Aggregation) (fragment, error) {
	arg, err := c.expr(b, e.Children()[0])
	if err != nil {
		return fragment{}, err
	}

	if where := e.Where(); where != nil {
		pred, err := c.expr(b, where)
		if err != nil {
			return fragment{}, err
		}

		arg, err = c.format(fnIf, pred, arg)
		if err != nil {
			return fragment{}, err
		}
	}

	return c.format(e.FunctionName(), arg)
}

func (c *compiler) functionCall(b *selectBlock, e FunctionCall) (fragment, error) {
	args := make([]string, len(e.Arguments()))
	for i, a := range e.Arguments() {
		f, err := c.expr(b, a)
		if err != nil {
			return fragment{}, err
		}
		args[i] = f.text
	}
	return atom(e.FunctionName() + "(" + strings.Join(args, ", ") + ")"), nil
}

// call renders the arguments and calls the dialect function with them.
func (c *compiler) call(b *selectBlock, fn string, args ...sql.Expression) (fragment, error) {
	frags := make([]fragment, len(args))
	for i, a := range args {
		f, err := c.expr(b, a)
		if err != nil {
			return fragment{}, err
		}
		frags[i] = f
	}
	return c.format(fn, frags...)
}

func (c *compiler) format(fn string, args ...fragment) (fragment, error) {
	texts := make([]string, len(args))
	for i, a := range args {
		if c.dialect.operators[fn] {
			texts[i] = a.wrap(precAtom)
		} else {
			texts[i] = a.text
		}
	}

	text, err := c.dialect.call(fn, texts...)
	if err != nil {
		return fragment{}, err
	}

	if fn == fnFind {
		return fragment{text, precAdd}, nil
	}
	return atom(text), nil
}

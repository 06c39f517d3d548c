// Package udf implements user defined functions written in JavaScript. The
// definition of every function called by a query is declared at the top of
// the query as a temporary function.
package udf

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mitchellh/hashstructure"
	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/compiler"
)

var (
	// ErrInvalidFunctionName is returned when the name of a function or of
	// one of its parameters is not a valid identifier.
	ErrInvalidFunctionName = errors.NewKind("invalid identifier %q in function %s")

	// ErrInvalidArgumentNumber is returned when a function is called with a
	// wrong number of arguments.
	ErrInvalidArgumentNumber = errors.NewKind("function %s expects %d arguments, %d given")

	// ErrFunctionNotFound is returned when a function is not registered.
	ErrFunctionNotFound = errors.NewKind("function not found: %s")
)

// Param is a parameter of a function.
type Param struct {
	Name string
	Type sql.Type
}

// Function is a JavaScript function callable from queries.
type Function struct {
	name   string
	params []Param
	output sql.Type
	source string
	strict bool
}

// Option configures a function.
type Option func(*Function)

// NonStrict disables the strict mode of the JavaScript body.
func NonStrict() Option {
	return func(f *Function) {
		f.strict = false
	}
}

// New returns a function with the given signature. The source must declare
// a JavaScript function with the same name and parameters, which is invoked
// with the arguments of the call.
func New(
	name string,
	params []Param,
	output sql.Type,
	source string,
	opts ...Option,
) (*Function, error) {
	if !isIdentifier(name) {
		return nil, ErrInvalidFunctionName.New(name, name)
	}

	if output == nil {
		return nil, sql.ErrInvalidType.New("function " + name + " without output type")
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, p := range params {
		if !isIdentifier(p.Name) {
			return nil, ErrInvalidFunctionName.New(p.Name, name)
		}

		if !seen.Add(p.Name) {
			return nil, sql.ErrDuplicateField.New(p.Name)
		}

		if p.Type == nil {
			return nil, sql.ErrInvalidType.New(fmt.Sprintf("parameter %s of %s without type", p.Name, name))
		}
	}

	f := &Function{
		name:   name,
		params: append([]Param(nil), params...),
		output: output,
		source: strings.Trim(source, "\n"),
		strict: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Name returns the name of the function.
func (f *Function) Name() string {
	return f.name
}

// Params returns the parameters of the function.
func (f *Function) Params() []Param {
	return f.params
}

// Output returns the type of the values returned by the function.
func (f *Function) Output() sql.Type {
	return f.output
}

// Call returns an expression calling the function with the given arguments.
func (f *Function) Call(args ...sql.Expression) (*Call, error) {
	if len(args) != len(f.params) {
		return nil, ErrInvalidArgumentNumber.New(f.name, len(f.params), len(args))
	}

	for i, arg := range args {
		if arg == nil {
			return nil, sql.ErrTypeMismatch.New(f.name, fmt.Sprintf("argument %s is nil", f.params[i].Name))
		}

		if !sql.IsCompatible(arg.Type(), f.params[i].Type) {
			return nil, sql.ErrTypeMismatch.New(f.name, fmt.Sprintf(
				"argument %s is %s, expected %s",
				f.params[i].Name, arg.Type(), f.params[i].Type,
			))
		}
	}

	return &Call{
		id:   sql.NewNodeID(),
		fn:   f,
		args: append([]sql.Expression(nil), args...),
	}, nil
}

// Definition returns the statement declaring the function in the given
// dialect. Only BigQuery supports JavaScript functions.
func (f *Function) Definition(d *compiler.Dialect) (string, error) {
	if d.Name() != compiler.BigQuery.Name() {
		return "", sql.ErrUnsupportedOperation.New("javascript function "+f.name, d.Name())
	}

	signature := make([]string, len(f.params))
	names := make([]string, len(f.params))
	for i, p := range f.params {
		typ, err := d.TypeName(javascriptType(p.Type))
		if err != nil {
			return "", err
		}
		signature[i] = p.Name + " " + typ
		names[i] = p.Name
	}

	output, err := d.TypeName(javascriptType(f.output))
	if err != nil {
		return "", err
	}

	var strict string
	if f.strict {
		strict = "'use strict';\n"
	}

	return fmt.Sprintf(
		"CREATE TEMPORARY FUNCTION %s(%s)\nRETURNS %s\nLANGUAGE js AS \"\"\"\n%s%s\nreturn %s(%s);\n\"\"\";",
		f.name,
		strings.Join(signature, ", "),
		output,
		strict,
		f.source,
		f.name,
		strings.Join(names, ", "),
	), nil
}

// Fingerprint identifies the signature and the body of the function.
func (f *Function) Fingerprint() (uint64, error) {
	params := make([]string, len(f.params))
	for i, p := range f.params {
		params[i] = p.Name + " " + p.Type.String()
	}

	return hashstructure.Hash(struct {
		Name   string
		Params []string
		Output string
		Source string
		Strict bool
	}{f.name, params, f.output.String(), f.source, f.strict}, nil)
}

// javascriptType returns the type the values are declared with. JavaScript
// has no integers, so INT64 values are passed as FLOAT64.
func javascriptType(t sql.Type) sql.Type {
	switch t := t.(type) {
	case sql.ArrayType:
		return sql.CreateArray(javascriptType(t.Elem))
	case sql.StructType:
		fields := make([]sql.StructField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = sql.StructField{Name: f.Name, Type: javascriptType(f.Type)}
		}
		return sql.MustCreateStruct(fields...)
	}

	if t.Kind() == sql.KindInt64 {
		return sql.Float64
	}
	return t
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Call is an expression calling a function.
type Call struct {
	id   sql.NodeID
	fn   *Function
	args []sql.Expression
}

var _ compiler.FunctionCall = (*Call)(nil)

// Function returns the function being called.
func (c *Call) Function() *Function {
	return c.fn
}

// ID implements the Root interface.
func (c *Call) ID() sql.NodeID {
	return c.id
}

// Type implements the Expression interface.
func (c *Call) Type() sql.Type {
	return c.fn.output
}

// Name implements the Expression interface.
func (c *Call) Name() string {
	return c.fn.name
}

// Children implements the Expression interface.
func (c *Call) Children() []sql.Expression {
	return c.args
}

// FunctionName implements the compiler.FunctionCall interface.
func (c *Call) FunctionName() string {
	return c.fn.name
}

// Arguments implements the compiler.FunctionCall interface.
func (c *Call) Arguments() []sql.Expression {
	return c.args
}

// Definition implements the compiler.FunctionCall interface.
func (c *Call) Definition(d *compiler.Dialect) (string, error) {
	return c.fn.Definition(d)
}

func (c *Call) String() string {
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.fn.name, strings.Join(args, ", "))
}

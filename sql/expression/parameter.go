package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Parameter is a named, typed placeholder for a scalar value that is only
// known when the query is compiled or executed.
type Parameter struct {
	node
	paramType sql.Type
	name      string
}

var _ sql.Expression = (*Parameter)(nil)

// NewParameter creates a new parameter of the given type. The name is
// optional: unnamed parameters are given one when compiled.
func NewParameter(paramType sql.Type, name string) *Parameter {
	return &Parameter{node: newNode(), paramType: paramType, name: name}
}

// Type implements the Expression interface.
func (p *Parameter) Type() sql.Type {
	return p.paramType
}

// Name implements the Expression interface.
func (p *Parameter) Name() string {
	if p.name == "" {
		return DefaultName
	}
	return p.name
}

// IsNamed reports whether the parameter was given a name.
func (p *Parameter) IsNamed() bool {
	return p.name != ""
}

// WithName returns a new parameter with the given name. The new parameter
// is a different node from the original one.
func (p *Parameter) WithName(name string) *Parameter {
	return NewParameter(p.paramType, name)
}

// Children implements the Expression interface.
func (*Parameter) Children() []sql.Expression {
	return nil
}

func (p *Parameter) String() string {
	name := p.name
	if name == "" {
		name = fmt.Sprintf("#%d", p.id)
	}
	return fmt.Sprintf("param(%s %s)", name, p.paramType)
}

// Bindings maps parameters to the host values they are bound to.
type Bindings map[*Parameter]interface{}

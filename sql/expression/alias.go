package expression

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Alias is a node that gives a name to an expression.
type Alias struct {
	UnaryExpression
	name string
}

var _ sql.Expression = (*Alias)(nil)

// NewAlias returns a new Alias node. The aliased expression is not modified.
func NewAlias(expr sql.Expression, name string) *Alias {
	return &Alias{newUnary(expr), name}
}

// Type returns the type of the expression.
func (e *Alias) Type() sql.Type {
	return e.Child.Type()
}

// Name implements the Nameable interface.
func (e *Alias) Name() string { return e.name }

func (e *Alias) String() string {
	return fmt.Sprintf("%s as %s", e.Child, e.name)
}

// Unalias returns the expression wrapped by any number of aliases.
func Unalias(e sql.Expression) sql.Expression {
	for {
		a, ok := e.(*Alias)
		if !ok {
			return e
		}
		e = a.Child
	}
}

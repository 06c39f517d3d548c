package plan

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

// Project is a projection of certain expression from the children node.
type Project struct {
	UnaryNode
	// Projections are the expressions projected.
	Projections []sql.Expression
	// Star is true when all the columns of the child are kept, with the
	// projections appended to them.
	Star   bool
	schema sql.Schema
}

var _ sql.Node = (*Project)(nil)

// NewProject creates a new projection.
func NewProject(child sql.Node, projections ...sql.Expression) (*Project, error) {
	return newProject(child, false, projections)
}

// NewMutate creates a new projection keeping all the columns of the child
// and adding the given ones.
func NewMutate(child sql.Node, projections ...sql.Expression) (*Project, error) {
	return newProject(child, true, projections)
}

func newProject(child sql.Node, star bool, projections []sql.Expression) (*Project, error) {
	if err := checkNotNil("projection", child); err != nil {
		return nil, err
	}

	if len(projections) == 0 && !star {
		return nil, sql.ErrInvalidNode.New(child, "projection without expressions")
	}

	for _, p := range projections {
		if p == nil {
			return nil, sql.ErrInvalidNode.New(p, "nil projection")
		}

		if expression.IsReduction(p) {
			return nil, sql.ErrUnsupportedOperation.New(p.String(), "projection, use an aggregate")
		}
	}

	if err := checkScope("projection", []sql.Node{child}, projections...); err != nil {
		return nil, err
	}

	var schema sql.Schema
	if star {
		schema = append(schema, child.Schema()...)
	}
	schema = append(schema, schemaOf(projections, "")...)

	if err := checkUniqueNames("projection", schema); err != nil {
		return nil, err
	}

	return &Project{
		UnaryNode:   newUnaryNode(child),
		Projections: projections,
		Star:        star,
		schema:      schema,
	}, nil
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	return p.schema
}

// Expressions implements the Node interface.
func (p *Project) Expressions() []sql.Expression {
	return p.Projections
}

func (p *Project) String() string {
	pr := sql.NewTreePrinter()
	exprs := expressionStrings(p.Projections)
	if p.Star {
		exprs = "*, " + exprs
	}
	_ = pr.WriteNode("Project(%s)", exprs)
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

// Filter skips rows that don't match a certain expression.
type Filter struct {
	UnaryNode
	// Predicates that must all be true for a row to be kept.
	Predicates []sql.Expression
}

var _ sql.Node = (*Filter)(nil)

// NewFilter creates a new filter node.
func NewFilter(child sql.Node, predicates ...sql.Expression) (*Filter, error) {
	if err := checkNotNil("filter", child); err != nil {
		return nil, err
	}

	if len(predicates) == 0 {
		return nil, sql.ErrInvalidNode.New(child, "filter without predicates")
	}

	for _, p := range predicates {
		if p == nil || p.Type().Kind() != sql.KindBoolean {
			return nil, sql.ErrTypeMismatch.New("filter", fmt.Sprintf("predicate %v is not boolean", p))
		}

		if expression.IsReduction(p) {
			return nil, sql.ErrUnsupportedOperation.New(p.String(), "filter")
		}
	}

	if err := checkScope("filter", []sql.Node{child}, predicates...); err != nil {
		return nil, err
	}

	return &Filter{UnaryNode: newUnaryNode(child), Predicates: predicates}, nil
}

// Schema implements the Node interface.
func (p *Filter) Schema() sql.Schema {
	return p.Child.Schema()
}

// Expressions implements the Node interface.
func (p *Filter) Expressions() []sql.Expression {
	return p.Predicates
}

func (p *Filter) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Filter(%s)", expressionStrings(p.Predicates))
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

package plan

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"gopkg.in/src-d/go-bqsql.v0/internal/similartext"
	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

// IsUnary returns whether the node is unary or not.
func IsUnary(node sql.Node) bool {
	return len(node.Children()) == 1
}

// IsBinary returns whether the node is binary or not.
func IsBinary(node sql.Node) bool {
	return len(node.Children()) == 2
}

// node holds the identity shared by every table node.
type node struct {
	id sql.NodeID
}

func newNode() node {
	return node{id: sql.NewNodeID()}
}

// ID implements the sql.Root interface.
func (n node) ID() sql.NodeID {
	return n.id
}

// UnaryNode is a node that has only one child.
type UnaryNode struct {
	node
	Child sql.Node
}

func newUnaryNode(child sql.Node) UnaryNode {
	return UnaryNode{node: newNode(), Child: child}
}

// Children implements the Node interface.
func (n *UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// Column returns a reference to the column with the given name of a node.
// It fails if the name is not in the node schema or if more than one column
// has that name.
func Column(n sql.Node, name string) (*expression.Column, error) {
	var found int
	for _, c := range n.Schema() {
		if c.Name == name {
			found++
		}
	}

	if found > 1 {
		if j, ok := n.(*Join); ok {
			return nil, sql.ErrAmbiguousColumn.New(
				name,
				expression.TableName(j.Left),
				expression.TableName(j.Right),
			)
		}
		return nil, sql.ErrAmbiguousColumn.New(name, expression.TableName(n), expression.TableName(n))
	}

	return expression.NewColumn(n, name)
}

// MustColumn is like Column but panics on error.
func MustColumn(n sql.Node, name string) *expression.Column {
	c, err := Column(n, name)
	if err != nil {
		panic(err)
	}
	return c
}

// InScope reports whether the rows of the target table flow into the
// source node. Views are opaque: the tables behind a view are not in its
// scope.
func InScope(source, target sql.Node) bool {
	if source.ID() == target.ID() {
		return true
	}

	if _, ok := source.(*View); ok {
		return false
	}

	for _, child := range source.Children() {
		if InScope(child, target) {
			return true
		}
	}
	return false
}

// checkScope validates that the expressions only reference columns
// available in the schema of the sources, taken from tables behind them.
func checkScope(op string, sources []sql.Node, exprs ...sql.Expression) error {
	names := mapset.NewThreadUnsafeSet[string]()
	var sourceNames, columns []string
	for _, s := range sources {
		for _, name := range s.Schema().Names() {
			if names.Add(name) {
				columns = append(columns, name)
			}
		}
		sourceNames = append(sourceNames, expression.TableName(s))
	}

	for _, e := range exprs {
		for _, c := range expression.Columns(e) {
			if !names.Contains(c.Name()) {
				return sql.ErrColumnNotFound.New(strings.Join(sourceNames, ", "), c.Name(), similartext.Find(columns, c.Name()))
			}
		}

		for _, t := range expression.Tables(e) {
			if !inAnyScope(sources, t) {
				return sql.ErrForeignColumn.New(e.String(), expression.TableName(t), op)
			}
		}
	}

	return nil
}

func inAnyScope(sources []sql.Node, target sql.Node) bool {
	for _, s := range sources {
		if InScope(s, target) {
			return true
		}
	}
	return false
}

// checkUniqueNames validates that the schema has no repeated names.
func checkUniqueNames(op string, schema sql.Schema) error {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, c := range schema {
		if !seen.Add(c.Name) {
			return sql.ErrDuplicateColumn.New(c.Name, op)
		}
	}
	return nil
}

func checkNotNil(op string, children ...sql.Node) error {
	for _, c := range children {
		if c == nil {
			return sql.ErrInvalidNode.New(c, op+" without source")
		}
	}
	return nil
}

func expressionStrings(exprs []sql.Expression) string {
	strs := make([]string, len(exprs))
	for i, e := range exprs {
		strs[i] = e.String()
	}
	return strings.Join(strs, ", ")
}

func schemaOf(exprs []sql.Expression, source string) sql.Schema {
	schema := make(sql.Schema, len(exprs))
	for i, e := range exprs {
		schema[i] = &sql.Column{
			Name:     e.Name(),
			Type:     e.Type(),
			Nullable: true,
			Source:   source,
		}
		if c, ok := expression.Unalias(e).(*expression.Column); ok && c.Name() == e.Name() {
			cc := *c.Source()
			schema[i] = &cc
		}
	}
	return schema
}

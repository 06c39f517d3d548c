package plan

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// UnboundTable is a table known only by its name and schema. It's rendered
// with its bare name.
type UnboundTable struct {
	node
	name   string
	schema sql.Schema
}

var _ sql.Node = (*UnboundTable)(nil)

// NewUnboundTable creates a new UnboundTable node.
func NewUnboundTable(name string, schema sql.Schema) (*UnboundTable, error) {
	if name == "" {
		return nil, sql.ErrInvalidTableName.New(name, "empty name")
	}

	schema = schema.WithSource(name)
	if err := checkUniqueNames(name, schema); err != nil {
		return nil, err
	}

	return &UnboundTable{node: newNode(), name: name, schema: schema}, nil
}

// Name implements the Nameable interface.
func (t *UnboundTable) Name() string {
	return t.name
}

// Schema implements the Node interface.
func (t *UnboundTable) Schema() sql.Schema {
	return t.schema
}

// Children implements the Node interface.
func (*UnboundTable) Children() []sql.Node {
	return nil
}

// Expressions implements the Node interface.
func (*UnboundTable) Expressions() []sql.Expression {
	return nil
}

func (t *UnboundTable) String() string {
	return fmt.Sprintf("UnboundTable(%s)", t.name)
}

// Table is a table of the remote engine described by its metadata.
type Table struct {
	node
	metadata *sql.TableMetadata
	schema   sql.Schema
}

var _ sql.Node = (*Table)(nil)

// NewTable creates a new Table node from the metadata of a remote table.
func NewTable(metadata *sql.TableMetadata) (*Table, error) {
	if metadata == nil || metadata.ID.Name == "" {
		return nil, sql.ErrInvalidTableName.New("", "table without name")
	}

	schema := metadata.TableSchema()
	if err := checkUniqueNames(metadata.ID.String(), schema); err != nil {
		return nil, err
	}

	return &Table{node: newNode(), metadata: metadata, schema: schema}, nil
}

// Name implements the Nameable interface.
func (t *Table) Name() string {
	return t.metadata.ID.Name
}

// TableID returns the fully qualified identifier of the table.
func (t *Table) TableID() sql.TableID {
	return t.metadata.ID
}

// Metadata returns the metadata the table was created with.
func (t *Table) Metadata() *sql.TableMetadata {
	return t.metadata
}

// Schema implements the Node interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

// Children implements the Node interface.
func (*Table) Children() []sql.Node {
	return nil
}

// Expressions implements the Node interface.
func (*Table) Expressions() []sql.Expression {
	return nil
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s)", t.metadata.ID)
}

// View is a node with the same rows as its child but a different identity,
// so a relation can be joined with itself.
type View struct {
	UnaryNode
}

var _ sql.Node = (*View)(nil)

// NewView creates a new View of the given node.
func NewView(child sql.Node) (*View, error) {
	if err := checkNotNil("view", child); err != nil {
		return nil, err
	}
	return &View{newUnaryNode(child)}, nil
}

// Name implements the Nameable interface.
func (v *View) Name() string {
	if n, ok := v.Child.(sql.Nameable); ok {
		return n.Name()
	}
	return "view"
}

// Schema implements the Node interface.
func (v *View) Schema() sql.Schema {
	return v.Child.Schema()
}

// Expressions implements the Node interface.
func (*View) Expressions() []sql.Expression {
	return nil
}

func (v *View) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("View")
	_ = pr.WriteChildren(v.Child.String())
	return pr.String()
}

// IsBaseTable reports whether the node is rendered as a table reference
// instead of a query.
func IsBaseTable(n sql.Node) bool {
	switch n := n.(type) {
	case *UnboundTable, *Table:
		return true
	case *View:
		return IsBaseTable(n.Child)
	default:
		return false
	}
}

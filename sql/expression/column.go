package expression

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-bqsql.v0/internal/similartext"
	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Column is a reference to a column of a table node.
type Column struct {
	node
	table  sql.Node
	column *sql.Column
	index  int
}

var _ sql.Expression = (*Column)(nil)

// NewColumn creates a reference to the column with the given name of the
// table. The partitioning pseudo-column of a table can also be referenced by
// its default display name.
func NewColumn(table sql.Node, name string) (*Column, error) {
	if table == nil {
		return nil, sql.ErrInvalidNode.New(table, "column "+name+" without table")
	}

	schema := table.Schema()
	idx := schema.IndexOf(name)
	if idx < 0 && name == sql.DefaultPartitionColumn {
		if pc := schema.PartitionColumn(); pc != nil && pc.Name == sql.PartitionTimeColumn {
			idx = schema.IndexOf(pc.Name)
		}
	}

	if idx < 0 {
		return nil, sql.ErrColumnNotFound.New(TableName(table), name, similartext.Find(schema.Names(), name))
	}

	return &Column{
		node:   newNode(),
		table:  table,
		column: schema[idx],
		index:  idx,
	}, nil
}

// Table returns the node the column belongs to.
func (c *Column) Table() sql.Node {
	return c.table
}

// Source returns the definition of the referenced column.
func (c *Column) Source() *sql.Column {
	return c.column
}

// Index returns the position of the column in the schema of its table.
func (c *Column) Index() int {
	return c.index
}

// IsPartition checks whether the column is the partitioning column of its
// table.
func (c *Column) IsPartition() bool {
	return c.column.Partition
}

// Type implements the Expression interface.
func (c *Column) Type() sql.Type {
	return c.column.Type
}

// Name implements the Expression interface.
func (c *Column) Name() string {
	return c.column.Name
}

// Children implements the Expression interface.
func (*Column) Children() []sql.Expression {
	return nil
}

func (c *Column) String() string {
	if n, ok := c.table.(sql.Nameable); ok {
		return n.Name() + "." + c.column.Name
	}
	return c.column.Name
}

// TableName returns a short description of a table node to be used in
// messages: its name if it has one or its kind otherwise.
func TableName(n sql.Node) string {
	if nameable, ok := n.(sql.Nameable); ok {
		return nameable.Name()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*plan.")
}

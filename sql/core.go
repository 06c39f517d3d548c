package sql

import (
	"fmt"
	"sync/atomic"
)

// NodeID is the identity of a node of an expression graph. Two nodes built
// separately have different ids even if they are structurally equal.
type NodeID uint64

var lastNodeID uint64

// NewNodeID allocates a new node identity.
func NewNodeID() NodeID {
	return NodeID(atomic.AddUint64(&lastNodeID, 1))
}

// Root is anything that can be compiled: an Expression or a Node.
type Root interface {
	fmt.Stringer
	// ID returns the identity of the node.
	ID() NodeID
}

// Expression is a scalar or column valued node of the algebra.
type Expression interface {
	Root
	// Type returns the resolved type of the expression.
	Type() Type
	// Name returns the display name of the expression.
	Name() string
	// Children returns the operands of the expression.
	Children() []Expression
}

// Aggregation is an expression reducing a column to a single value.
type Aggregation interface {
	Expression
	// FunctionName returns the name of the aggregate function.
	FunctionName() string
	// Where returns the filter applied to the aggregated rows, or nil.
	Where() Expression
}

// Node is a table valued node of the algebra.
type Node interface {
	Root
	// Schema returns the output schema of the node.
	Schema() Schema
	// Children returns the source relations of the node.
	Children() []Node
	// Expressions returns the expressions the node is built with.
	Expressions() []Expression
}

// Nameable is something that has a name.
type Nameable interface {
	Name() string
}

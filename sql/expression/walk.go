package expression

import "gopkg.in/src-d/go-bqsql.v0/sql"

// Visitor visits exprs in the plan.
type Visitor interface {
	// Visit method is invoked for each expr encountered by Walk.
	// If the result Visitor is not nul, Walk visits each of the children
	// of the expr with that visitor, followed by a call of Visit(nil)
	// to the returned visitor.
	Visit(expr sql.Expression) Visitor
}

// Walk traverses the expression tree in depth-first order. It starts by
// calling v.Visit(expr); expr must not be nil. If the visitor returned by
// v.Visit(expr) is not nil, Walk is invoked recursively with the returned
// visitor for each children of the expr, followed by a call of v.Visit(nil)
// to the returned visitor.
func Walk(v Visitor, expr sql.Expression) {
	if v = v.Visit(expr); v == nil {
		return
	}

	for _, child := range expr.Children() {
		Walk(v, child)
	}

	v.Visit(nil)
}

type inspector func(sql.Expression) bool

func (f inspector) Visit(expr sql.Expression) Visitor {
	if f(expr) {
		return f
	}
	return nil
}

// Inspect traverses the expression in depth-first order: It starts by
// calling f(expr); expr must not be nil. If f returns true, Inspect invokes
// f recursively for each of the children of expr, followed by a call of
// f(nil).
func Inspect(expr sql.Expression, f func(sql.Expression) bool) {
	Walk(inspector(f), expr)
}

// TableReference is an expression that takes its values from a table.
type TableReference interface {
	sql.Expression
	Table() sql.Node
}

// Columns returns the distinct columns referenced by the expression, in
// the order they are first found.
func Columns(e sql.Expression) []*Column {
	var result []*Column
	seen := make(map[sql.NodeID]struct{})
	Inspect(e, func(e sql.Expression) bool {
		if c, ok := e.(*Column); ok {
			if _, ok := seen[c.ID()]; !ok {
				seen[c.ID()] = struct{}{}
				result = append(result, c)
			}
		}
		return true
	})
	return result
}

// Parameters returns the distinct parameters of the expression, in the
// order they are first found.
func Parameters(e sql.Expression) []*Parameter {
	var result []*Parameter
	seen := make(map[sql.NodeID]struct{})
	Inspect(e, func(e sql.Expression) bool {
		if p, ok := e.(*Parameter); ok {
			if _, ok := seen[p.ID()]; !ok {
				seen[p.ID()] = struct{}{}
				result = append(result, p)
			}
		}
		return true
	})
	return result
}

// Tables returns the distinct tables the expression takes values from, in
// the order they are first found.
func Tables(e sql.Expression) []sql.Node {
	var result []sql.Node
	seen := make(map[sql.NodeID]struct{})
	Inspect(e, func(e sql.Expression) bool {
		if r, ok := e.(TableReference); ok {
			t := r.Table()
			if _, ok := seen[t.ID()]; !ok {
				seen[t.ID()] = struct{}{}
				result = append(result, t)
			}
		}
		return true
	})
	return result
}

// IsReduction reports whether the expression reduces its tables to a
// single value, that is, it contains an aggregation.
func IsReduction(e sql.Expression) bool {
	var found bool
	Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(sql.Aggregation); ok {
			found = true
		}
		return !found
	})
	return found
}

// SameTables reports whether two lists of tables contain the same nodes.
func SameTables(a, b []sql.Node) bool {
	if len(a) != len(b) {
		return false
	}

	ids := make(map[sql.NodeID]struct{}, len(a))
	for _, t := range a {
		ids[t.ID()] = struct{}{}
	}

	for _, t := range b {
		if _, ok := ids[t.ID()]; !ok {
			return false
		}
	}
	return true
}

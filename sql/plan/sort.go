package plan

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

// SortOrder represents the order of the sort (ascending or descending).
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = 1
	// Descending order.
	Descending SortOrder = 2
)

func (s SortOrder) String() string {
	switch s {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return "invalid SortOrder"
	}
}

// SortField is a field by which the query will be sorted.
type SortField struct {
	// Column to order by.
	Column sql.Expression
	// Order type.
	Order SortOrder
}

// Asc returns a field to sort by the expression in ascending order.
func Asc(e sql.Expression) SortField {
	return SortField{Column: e, Order: Ascending}
}

// Desc returns a field to sort by the expression in descending order.
func Desc(e sql.Expression) SortField {
	return SortField{Column: e, Order: Descending}
}

// Sort is the sort node.
type Sort struct {
	UnaryNode
	SortFields []SortField
}

var _ sql.Node = (*Sort)(nil)

// NewSort creates a new Sort node.
func NewSort(child sql.Node, fields ...SortField) (*Sort, error) {
	if err := checkNotNil("sort", child); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, sql.ErrInvalidNode.New(child, "sort without fields")
	}

	exprs := make([]sql.Expression, len(fields))
	for i, f := range fields {
		if f.Column == nil || expression.IsReduction(f.Column) {
			return nil, sql.ErrTypeMismatch.New("sort", fmt.Sprintf("invalid sort key %v", f.Column))
		}

		switch f.Column.Type().Kind() {
		case sql.KindArray, sql.KindStruct:
			return nil, sql.ErrTypeMismatch.New("sort", f.Column.Type().String()+" is not orderable")
		}

		if f.Order != Ascending && f.Order != Descending {
			return nil, sql.ErrInvalidNode.New(child, "sort field with invalid order "+f.Order.String())
		}
		exprs[i] = f.Column
	}

	if err := checkScope("sort", []sql.Node{child}, exprs...); err != nil {
		return nil, err
	}

	return &Sort{UnaryNode: newUnaryNode(child), SortFields: fields}, nil
}

// Schema implements the Node interface.
func (s *Sort) Schema() sql.Schema {
	return s.Child.Schema()
}

// Expressions implements the Node interface.
func (s *Sort) Expressions() []sql.Expression {
	exprs := make([]sql.Expression, len(s.SortFields))
	for i, f := range s.SortFields {
		exprs[i] = f.Column
	}
	return exprs
}

func (s *Sort) String() string {
	pr := sql.NewTreePrinter()
	var fields = make([]string, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = fmt.Sprintf("%s %s", f.Column, f.Order)
	}
	_ = pr.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	_ = pr.WriteChildren(s.Child.String())
	return pr.String()
}

// Limit is a node that only allows up to N rows to be retrieved, skipping
// the first Offset ones.
type Limit struct {
	UnaryNode
	Limit  int64
	Offset int64
}

var _ sql.Node = (*Limit)(nil)

// NewLimit creates a new Limit node with the given size and offset.
func NewLimit(child sql.Node, size, offset int64) (*Limit, error) {
	if err := checkNotNil("limit", child); err != nil {
		return nil, err
	}

	if size < 0 || offset < 0 {
		return nil, sql.ErrInvalidLimit.New(size, offset)
	}

	return &Limit{UnaryNode: newUnaryNode(child), Limit: size, Offset: offset}, nil
}

// Schema implements the Node interface.
func (l *Limit) Schema() sql.Schema {
	return l.Child.Schema()
}

// Expressions implements the Node interface.
func (*Limit) Expressions() []sql.Expression {
	return nil
}

func (l *Limit) String() string {
	pr := sql.NewTreePrinter()
	if l.Offset > 0 {
		_ = pr.WriteNode("Limit(%d, offset %d)", l.Limit, l.Offset)
	} else {
		_ = pr.WriteNode("Limit(%d)", l.Limit)
	}
	_ = pr.WriteChildren(l.Child.String())
	return pr.String()
}

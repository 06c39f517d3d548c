package plan

import (
	"fmt"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
)

// JoinType is the kind of a join.
type JoinType byte

const (
	// JoinTypeInner keeps the pairs of rows matching the predicates.
	JoinTypeInner JoinType = iota
	// JoinTypeLeft keeps every row of the left side.
	JoinTypeLeft
	// JoinTypeRight keeps every row of the right side.
	JoinTypeRight
	// JoinTypeFull keeps every row of both sides.
	JoinTypeFull
	// JoinTypeCross is the cartesian product of both sides.
	JoinTypeCross
)

func (t JoinType) String() string {
	switch t {
	case JoinTypeInner:
		return "InnerJoin"
	case JoinTypeLeft:
		return "LeftOuterJoin"
	case JoinTypeRight:
		return "RightOuterJoin"
	case JoinTypeFull:
		return "FullOuterJoin"
	case JoinTypeCross:
		return "CrossJoin"
	default:
		return fmt.Sprintf("JoinType(%d)", byte(t))
	}
}

// Join is a node that combines the rows of two nodes.
type Join struct {
	node
	Op         JoinType
	Left       sql.Node
	Right      sql.Node
	Predicates []sql.Expression
	schema     sql.Schema
}

var _ sql.Node = (*Join)(nil)

// NewJoin creates a new join of the given type. Cross joins can't have
// predicates, every other join needs at least one.
func NewJoin(op JoinType, left, right sql.Node, predicates ...sql.Expression) (*Join, error) {
	if err := checkNotNil(op.String(), left, right); err != nil {
		return nil, err
	}

	if op > JoinTypeCross {
		return nil, sql.ErrUnsupportedOperation.New(op.String(), "join")
	}

	if left.ID() == right.ID() || InScope(left, right) || InScope(right, left) {
		return nil, sql.ErrSelfJoin.New(expression.TableName(left))
	}

	switch {
	case op == JoinTypeCross && len(predicates) > 0:
		return nil, sql.ErrInvalidNode.New(left, "cross join with predicates")
	case op != JoinTypeCross && len(predicates) == 0:
		return nil, sql.ErrInvalidNode.New(left, op.String()+" without predicates")
	}

	for _, p := range predicates {
		if p == nil || p.Type().Kind() != sql.KindBoolean {
			return nil, sql.ErrTypeMismatch.New("join", fmt.Sprintf("predicate %v is not boolean", p))
		}

		if expression.IsReduction(p) {
			return nil, sql.ErrUnsupportedOperation.New(p.String(), "join predicate")
		}

		for _, t := range expression.Tables(p) {
			if InScope(left, t) && InScope(right, t) {
				return nil, sql.ErrSelfJoin.New(expression.TableName(t))
			}
		}
	}

	if err := checkScope("join", []sql.Node{left, right}, predicates...); err != nil {
		return nil, err
	}

	var schema sql.Schema
	schema = append(schema, left.Schema()...)
	schema = append(schema, right.Schema()...)

	return &Join{
		node:       newNode(),
		Op:         op,
		Left:       left,
		Right:      right,
		Predicates: predicates,
		schema:     schema,
	}, nil
}

// NewInnerJoin creates a new inner join.
func NewInnerJoin(left, right sql.Node, predicates ...sql.Expression) (*Join, error) {
	return NewJoin(JoinTypeInner, left, right, predicates...)
}

// NewLeftJoin creates a new left outer join.
func NewLeftJoin(left, right sql.Node, predicates ...sql.Expression) (*Join, error) {
	return NewJoin(JoinTypeLeft, left, right, predicates...)
}

// NewRightJoin creates a new right outer join.
func NewRightJoin(left, right sql.Node, predicates ...sql.Expression) (*Join, error) {
	return NewJoin(JoinTypeRight, left, right, predicates...)
}

// NewFullOuterJoin creates a new full outer join.
func NewFullOuterJoin(left, right sql.Node, predicates ...sql.Expression) (*Join, error) {
	return NewJoin(JoinTypeFull, left, right, predicates...)
}

// NewCrossJoin creates a new cross join.
func NewCrossJoin(left, right sql.Node) (*Join, error) {
	return NewJoin(JoinTypeCross, left, right)
}

// Schema implements the Node interface. It has the columns of both sides,
// so it may contain repeated names.
func (j *Join) Schema() sql.Schema {
	return j.schema
}

// Children implements the Node interface.
func (j *Join) Children() []sql.Node {
	return []sql.Node{j.Left, j.Right}
}

// Expressions implements the Node interface.
func (j *Join) Expressions() []sql.Expression {
	return j.Predicates
}

func (j *Join) String() string {
	pr := sql.NewTreePrinter()
	if len(j.Predicates) > 0 {
		_ = pr.WriteNode("%s(%s)", j.Op, expressionStrings(j.Predicates))
	} else {
		_ = pr.WriteNode("%s", j.Op)
	}
	_ = pr.WriteChildren(j.Left.String(), j.Right.String())
	return pr.String()
}

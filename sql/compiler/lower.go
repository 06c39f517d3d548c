package compiler

import (
	mapset "github.com/deckarep/golang-set/v2"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
)

// lower builds the SELECT block computing the rows of the node, fusing it
// with the blocks of its children when possible.
func (c *compiler) lower(n sql.Node) (*selectBlock, error) {
	switch n := n.(type) {
	case *plan.UnboundTable, *plan.Table:
		return c.baseBlock(n)
	case *plan.View:
		return c.lowerView(n)
	case *plan.Project:
		return c.lowerProject(n)
	case *plan.Filter:
		return c.lowerFilter(n)
	case *plan.Aggregate:
		return c.lowerAggregate(n)
	case *plan.Sort:
		return c.lowerSort(n)
	case *plan.Limit:
		return c.lowerLimit(n)
	case *plan.Join:
		return c.lowerJoin(n)
	default:
		return nil, sql.ErrInvalidNode.New(n, "unknown table operation")
	}
}

func (c *compiler) baseBlock(n sql.Node) (*selectBlock, error) {
	b := &selectBlock{
		star:        "*",
		from:        &fromItem{node: n, text: c.tableRef(n)},
		passthrough: names(n),
	}

	pc := c.exposed(n)
	if pc == nil {
		return b, nil
	}

	display := c.dialect.Quote(c.display(pc))
	b.passthrough.Remove(pc.Name)
	switch {
	case pc.Name == sql.PartitionTimeColumn:
		b.items = []string{c.dialect.Quote(pc.Name) + " AS " + display}
	case c.dialect.except:
		b.star = "* EXCEPT (" + c.dialect.Quote(pc.Name) + ")"
		b.items = []string{c.dialect.Quote(pc.Name) + " AS " + display}
	default:
		b.star = ""
		for _, col := range n.Schema() {
			item := c.dialect.Quote(col.Name)
			if col.Name == pc.Name {
				item += " AS " + display
			}
			b.items = append(b.items, item)
		}
	}
	return b, nil
}

func (c *compiler) lowerView(n *plan.View) (*selectBlock, error) {
	if plan.IsBaseTable(n) {
		return c.baseBlock(n)
	}

	if c.shared(n.Child) {
		from, err := c.source(n.Child)
		if err != nil {
			return nil, err
		}
		return &selectBlock{star: "*", from: from, passthrough: names(n)}, nil
	}

	return c.lower(n.Child)
}

// scan returns the block a projection or an aggregation over the node is
// built on.
func (c *compiler) scan(n sql.Node) (*selectBlock, error) {
	if c.isBase(n) || c.isJoinBlock(n) {
		return c.lower(n)
	}

	from, err := c.source(n)
	if err != nil {
		return nil, err
	}
	return &selectBlock{from: from}, nil
}

func (c *compiler) lowerProject(n *plan.Project) (*selectBlock, error) {
	b, err := c.scan(n.Child)
	if err != nil {
		return nil, err
	}

	b.star = ""
	if n.Star {
		b.star = "*"
	}

	if b.items, err = c.selectItems(b, n.Projections); err != nil {
		return nil, err
	}

	b.passthrough = projectPassthrough(n)
	return b, nil
}

func (c *compiler) lowerAggregate(n *plan.Aggregate) (*selectBlock, error) {
	var (
		b   *selectBlock
		err error
	)
	if c.filteredBase(n.Child) {
		b, err = c.lower(n.Child)
	} else {
		b, err = c.scan(n.Child)
	}
	if err != nil {
		return nil, err
	}

	b.star = ""
	if b.items, err = c.selectItems(b, n.Expressions()); err != nil {
		return nil, err
	}

	b.groupBy = len(n.Keys)
	b.passthrough = nil
	return b, nil
}

func (c *compiler) lowerFilter(n *plan.Filter) (*selectBlock, error) {
	var b *selectBlock
	if c.filterFuses(n) {
		var err error
		if b, err = c.lower(n.Child); err != nil {
			return nil, err
		}
	} else {
		from, err := c.source(n.Child)
		if err != nil {
			return nil, err
		}
		b = &selectBlock{star: "*", from: from, passthrough: names(n)}
	}

	for _, p := range n.Predicates {
		pred, err := c.predicate(b, p)
		if err != nil {
			return nil, err
		}
		b.where = append(b.where, pred)
	}
	return b, nil
}

func (c *compiler) lowerSort(n *plan.Sort) (*selectBlock, error) {
	b, err := c.extend(n.Child)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(n.SortFields))
	for i, f := range n.SortFields {
		key, err := c.expr(b, f.Column)
		if err != nil {
			return nil, err
		}

		keys[i] = key.text
		if f.Order == plan.Descending {
			keys[i] += " DESC"
		}
	}

	b.orderBy = append(keys, b.orderBy...)
	b.passthrough = nil
	return b, nil
}

func (c *compiler) lowerLimit(n *plan.Limit) (*selectBlock, error) {
	b, err := c.extend(n.Child)
	if err != nil {
		return nil, err
	}

	b.limit = &limitClause{count: n.Limit, offset: n.Offset}
	b.passthrough = nil
	return b, nil
}

// extend returns the block of the node if an ORDER BY or a LIMIT can be
// appended to it, or a new block selecting from it otherwise.
func (c *compiler) extend(n sql.Node) (*selectBlock, error) {
	if !c.shared(n) && !c.hasLimit(n) {
		return c.lower(n)
	}

	from, err := c.source(n)
	if err != nil {
		return nil, err
	}
	return &selectBlock{star: "*", from: from}, nil
}

func (c *compiler) lowerJoin(n *plan.Join) (*selectBlock, error) {
	var b *selectBlock
	if left, ok := n.Left.(*plan.Join); ok && !c.shared(left) {
		var err error
		if b, err = c.lower(left); err != nil {
			return nil, err
		}
	} else {
		from, err := c.participant(n.Left)
		if err != nil {
			return nil, err
		}
		b = &selectBlock{from: from}
	}

	right, err := c.participant(n.Right)
	if err != nil {
		return nil, err
	}

	b.joins = append(b.joins, joinItem{kind: joinKeywords[n.Op], from: right})
	j := &b.joins[len(b.joins)-1]
	for _, p := range n.Predicates {
		pred, err := c.predicate(b, p)
		if err != nil {
			return nil, err
		}
		j.on = append(j.on, pred)
	}

	b.star = "*"
	b.passthrough = names(n)
	return b, nil
}

func (c *compiler) predicate(b *selectBlock, e sql.Expression) (string, error) {
	f, err := c.expr(b, e)
	if err != nil {
		return "", err
	}
	return f.wrap(precAnd + 1), nil
}

func (c *compiler) selectItems(b *selectBlock, exprs []sql.Expression) ([]string, error) {
	items := make([]string, len(exprs))
	for i, e := range exprs {
		f, err := c.expr(b, e)
		if err != nil {
			return nil, err
		}

		name := c.outputName(e)
		if col, ok := e.(*expression.Column); ok && c.display(col.Source()) == name {
			items[i] = f.text
		} else {
			items[i] = f.text + " AS " + c.dialect.Quote(name)
		}
	}
	return items, nil
}

// source returns the item a block selects from when it can't be fused
// with the node.
func (c *compiler) source(n sql.Node) (*fromItem, error) {
	if c.isBase(n) {
		return &fromItem{node: n, text: c.tableRef(n)}, nil
	}

	if c.shared(n) {
		alias, err := c.cte(n)
		if err != nil {
			return nil, err
		}
		return &fromItem{node: n, text: alias}, nil
	}

	alias := c.nextAlias()
	b, err := c.lower(n)
	if err != nil {
		return nil, err
	}
	return &fromItem{node: n, query: b.String(), alias: alias}, nil
}

// participant returns the item a side of a join is read from. Participants
// always have an alias.
func (c *compiler) participant(n sql.Node) (*fromItem, error) {
	if c.isBase(n) {
		return &fromItem{node: n, text: c.tableRef(n), alias: c.nextAlias()}, nil
	}

	if c.shared(n) {
		alias := c.nextAlias()
		cte, err := c.cte(n)
		if err != nil {
			return nil, err
		}
		return &fromItem{node: n, text: cte, alias: alias}, nil
	}

	return c.source(n)
}

// cte returns the alias of the common table expression of a shared node,
// defining it the first time.
func (c *compiler) cte(n sql.Node) (string, error) {
	if alias, ok := c.ctes[n.ID()]; ok {
		return alias, nil
	}

	alias := c.nextAlias()
	c.ctes[n.ID()] = alias
	b, err := c.lower(n)
	if err != nil {
		return "", err
	}

	c.cteDefs = append(c.cteDefs, cteDefinition{alias: alias, query: b.String()})
	return alias, nil
}

func (c *compiler) tableRef(n sql.Node) string {
	switch n := n.(type) {
	case *plan.View:
		return c.tableRef(n.Child)
	case *plan.Table:
		return c.dialect.TableReference(n.TableID())
	case sql.Nameable:
		return n.Name()
	default:
		return expression.TableName(n)
	}
}

// shared reports whether the node is read by more than one parent and must
// be defined once as a common table expression.
func (c *compiler) shared(n sql.Node) bool {
	return !c.isBase(n) && c.uses[n.ID()] > 1
}

// isBase reports whether the node can be read as a plain table reference.
func (c *compiler) isBase(n sql.Node) bool {
	return plan.IsBaseTable(n) && c.exposed(n) == nil
}

// exposed returns the partitioning column of a base table when it's
// displayed with a name other than its storage name.
func (c *compiler) exposed(n sql.Node) *sql.Column {
	if !plan.IsBaseTable(n) {
		return nil
	}

	pc := n.Schema().PartitionColumn()
	if pc == nil || c.display(pc) == pc.Name {
		return nil
	}
	return pc
}

// display returns the name a column is referenced by in the output.
func (c *compiler) display(col *sql.Column) string {
	return DisplayName(c.ctx, col)
}

// DisplayName returns the name of the column in query results. Partitioning
// columns take the name set in the options of the context, if any.
func DisplayName(ctx *sql.Context, col *sql.Column) string {
	if col.Partition {
		if name, ok := ctx.Options().PartitionColumn(); ok {
			return name
		}
	}
	return col.Name
}

func (c *compiler) outputName(e sql.Expression) string {
	if col, ok := expression.Unalias(e).(*expression.Column); ok && col.Name() == e.Name() {
		return c.display(col.Source())
	}

	if e.Name() == "" {
		return expression.DefaultName
	}
	return e.Name()
}

func (c *compiler) isJoinBlock(n sql.Node) bool {
	if c.shared(n) {
		return false
	}

	switch n := n.(type) {
	case *plan.Join:
		return true
	case *plan.Filter:
		return c.isJoinBlock(n.Child)
	default:
		return false
	}
}

// filteredBase reports whether the node is a chain of filters over a base
// table, all of them fused into a single SELECT block.
func (c *compiler) filteredBase(n sql.Node) bool {
	f, ok := n.(*plan.Filter)
	if !ok || c.shared(f) {
		return false
	}

	if c.isBase(f.Child) {
		return true
	}
	return c.filterFuses(f) && c.filteredBase(f.Child)
}

func (c *compiler) hasLimit(n sql.Node) bool {
	switch n := n.(type) {
	case *plan.Limit:
		return true
	case *plan.View:
		return !plan.IsBaseTable(n) && !c.shared(n.Child) && c.hasLimit(n.Child)
	default:
		return false
	}
}

// filterFuses reports whether the predicates of the filter can be added to
// the block of its child.
func (c *compiler) filterFuses(f *plan.Filter) bool {
	if c.shared(f.Child) {
		return false
	}

	if c.isBase(f.Child) {
		return true
	}

	available := c.passthrough(f.Child)
	if available == nil {
		return false
	}

	for _, p := range f.Predicates {
		for _, col := range expression.Columns(p) {
			if !available.Contains(col.Name()) {
				return false
			}
		}
	}
	return true
}

// passthrough returns the names of the columns that can be used in a WHERE
// clause appended to the block of the node, following how lower builds it.
func (c *compiler) passthrough(n sql.Node) mapset.Set[string] {
	if c.shared(n) {
		return nil
	}

	if plan.IsBaseTable(n) {
		set := names(n)
		if pc := c.exposed(n); pc != nil {
			set.Remove(pc.Name)
		}
		return set
	}

	switch n := n.(type) {
	case *plan.View:
		if c.shared(n.Child) {
			return names(n)
		}
		return c.passthrough(n.Child)
	case *plan.Project:
		return projectPassthrough(n)
	case *plan.Filter:
		if c.filterFuses(n) {
			return c.passthrough(n.Child)
		}
		return names(n)
	case *plan.Join:
		return names(n)
	default:
		return nil
	}
}

func projectPassthrough(n *plan.Project) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	if n.Star {
		set.Append(n.Child.Schema().Names()...)
	}

	for _, e := range n.Projections {
		if col, ok := e.(*expression.Column); ok {
			set.Add(col.Name())
		}
	}
	return set
}

func names(n sql.Node) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet[string](n.Schema().Names()...)
}

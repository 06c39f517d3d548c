// Package compiler renders expressions and table operations as SQL text.
package compiler

import (
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure"
	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
)

// QueryParameter is a bound parameter sent along with the query instead of
// being inlined in it.
type QueryParameter struct {
	Name  string
	Type  sql.Type
	Value interface{}
}

// CompiledQuery is the result of compiling an expression.
type CompiledQuery struct {
	// SQL is the text of the query.
	SQL string
	// Unresolved are the parameters without a binding, each one rendered
	// as a placeholder.
	Unresolved []*expression.Parameter
	// Parameters are the bound parameters rendered as placeholders. It's
	// only filled when compiling with WithQueryParameters.
	Parameters []QueryParameter
	// Schema of the rows returned by the query, with columns named as they
	// are displayed.
	Schema sql.Schema
	// Hash identifies the text of the query.
	Hash uint64

	names map[*expression.Parameter]string
}

// NameOf returns the name the parameter was given in the query.
func (q *CompiledQuery) NameOf(p *expression.Parameter) (string, bool) {
	name, ok := q.names[p]
	return name, ok
}

// Option configures a compilation.
type Option func(*compiler)

// WithDialect sets the dialect of the generated SQL. BigQuery is used by
// default.
func WithDialect(d *Dialect) Option {
	return func(c *compiler) {
		c.dialect = d
	}
}

// WithQueryParameters renders bound parameters as placeholders, returning
// their values in the Parameters of the compiled query.
func WithQueryParameters() Option {
	return func(c *compiler) {
		c.bindMode = true
	}
}

type function struct {
	definition  string
	fingerprint uint64
}

type compiler struct {
	ctx      *sql.Context
	dialect  *Dialect
	bindings expression.Bindings
	bindMode bool

	uses    map[sql.NodeID]int
	aliases int
	ctes    map[sql.NodeID]string
	cteDefs []cteDefinition

	params     []*expression.Parameter
	names      map[*expression.Parameter]string
	paramNames map[string]*expression.Parameter

	functions     map[string]function
	functionOrder []string
}

// Compile renders the given expression or table operation as a query. Bound
// parameters are inlined as literals unless WithQueryParameters is given,
// unbound ones are rendered as placeholders.
func Compile(
	ctx *sql.Context,
	root sql.Root,
	bindings expression.Bindings,
	opts ...Option,
) (*CompiledQuery, error) {
	if ctx == nil {
		ctx = sql.NewEmptyContext()
	}

	span, ctx := ctx.Span("compiler.Compile")
	defer span.Finish()

	c := &compiler{
		ctx:        ctx,
		dialect:    BigQuery,
		bindings:   bindings,
		uses:       make(map[sql.NodeID]int),
		ctes:       make(map[sql.NodeID]string),
		names:      make(map[*expression.Parameter]string),
		paramNames: make(map[string]*expression.Parameter),
		functions:  make(map[string]function),
	}
	for _, opt := range opts {
		opt(c)
	}

	query, err := c.compile(root)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}

	span.SetTag("query_hash", query.Hash)
	logrus.WithFields(logrus.Fields{
		"query_hash": query.Hash,
		"dialect":    c.dialect.name,
	}).Debugf("compiled query:\n%s", query.SQL)

	return query, nil
}

func (c *compiler) compile(root sql.Root) (*CompiledQuery, error) {
	var (
		node sql.Node
		body string
		err  error
	)

	switch r := root.(type) {
	case sql.Node:
		node = r
	case sql.Expression:
		if node, err = expressionNode(r); err != nil {
			return nil, err
		}

		if node == nil {
			if err := c.collect(r); err != nil {
				return nil, err
			}

			if err := c.nameParameters(); err != nil {
				return nil, err
			}

			f, err := c.expr(nil, r)
			if err != nil {
				return nil, err
			}

			name := c.outputName(r)
			body = "SELECT " + f.text + " AS " + c.dialect.Quote(name)
			return c.result(body, sql.Schema{{Name: name, Type: r.Type(), Nullable: true}})
		}
	default:
		return nil, sql.ErrInvalidNode.New(root, "cannot compile")
	}

	if err := c.prepare(node); err != nil {
		return nil, err
	}

	if err := c.nameParameters(); err != nil {
		return nil, err
	}

	b, err := c.lower(node)
	if err != nil {
		return nil, err
	}

	body = renderWith(c.cteDefs, b.String())
	return c.result(body, c.displaySchema(c.visible(node)))
}

// expressionNode wraps an expression depending on a table in the node
// selecting it. It returns nil for expressions without tables.
func expressionNode(e sql.Expression) (sql.Node, error) {
	tables := expression.Tables(e)
	switch len(tables) {
	case 0:
		return nil, nil
	case 1:
		if expression.IsReduction(e) {
			return plan.NewAggregate(tables[0], nil, []sql.Expression{e})
		}
		return plan.NewProject(tables[0], e)
	default:
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = expression.TableName(t)
		}
		return nil, sql.ErrInvalidNode.New(e, "expression takes values from several tables: "+strings.Join(names, ", "))
	}
}

func (c *compiler) result(body string, schema sql.Schema) (*CompiledQuery, error) {
	var defs []string
	for _, name := range c.functionOrder {
		defs = append(defs, c.functions[name].definition)
	}

	text := body
	if len(defs) > 0 {
		text = strings.Join(defs, "\n\n") + "\n\n" + body
	}

	hash, err := hashstructure.Hash(text, nil)
	if err != nil {
		return nil, err
	}

	query := &CompiledQuery{
		SQL:    text,
		Schema: schema,
		Hash:   hash,
		names:  c.names,
	}

	for _, p := range c.params {
		v, ok := c.bindings[p]
		if !ok {
			query.Unresolved = append(query.Unresolved, p)
			continue
		}

		if c.bindMode {
			value, err := sql.Coerce(v, p.Type())
			if err != nil {
				return nil, err
			}

			query.Parameters = append(query.Parameters, QueryParameter{
				Name:  c.names[p],
				Type:  p.Type(),
				Value: value,
			})
		}
	}

	return query, nil
}

// visible returns the columns of the node the engine returns. Engines don't
// expand * to the ingestion time pseudo-column, so it's left out unless it's
// selected by name.
func (c *compiler) visible(n sql.Node) sql.Schema {
	schema := n.Schema()
	if !c.hidesPartitionTime(n) {
		return schema
	}

	result := make(sql.Schema, 0, len(schema))
	for _, col := range schema {
		if !c.hiddenPartitionTime(col) {
			result = append(result, col)
		}
	}
	return result
}

func (c *compiler) hiddenPartitionTime(col *sql.Column) bool {
	return col.Partition && col.Name == sql.PartitionTimeColumn && c.display(col) == col.Name
}

// hidesPartitionTime reports whether the node reads an ingestion time table
// through *, its pseudo-column not being exposed with another name.
func (c *compiler) hidesPartitionTime(n sql.Node) bool {
	if plan.IsBaseTable(n) {
		pc := n.Schema().PartitionColumn()
		return pc != nil && c.hiddenPartitionTime(pc)
	}

	switch n := n.(type) {
	case *plan.View:
		return c.hidesPartitionTime(n.Child)
	case *plan.Filter:
		return c.hidesPartitionTime(n.Child)
	case *plan.Sort:
		return c.hidesPartitionTime(n.Child)
	case *plan.Limit:
		return c.hidesPartitionTime(n.Child)
	case *plan.Project:
		return n.Star && c.hidesPartitionTime(n.Child)
	case *plan.Join:
		return c.hidesPartitionTime(n.Left) || c.hidesPartitionTime(n.Right)
	default:
		return false
	}
}

func (c *compiler) displaySchema(schema sql.Schema) sql.Schema {
	result := make(sql.Schema, len(schema))
	for i, col := range schema {
		cc := *col
		cc.Name = c.display(col)
		result[i] = &cc
	}
	return result
}

// prepare counts how many parents read each node and collects the
// parameters and functions of their expressions.
func (c *compiler) prepare(n sql.Node) error {
	for _, e := range n.Expressions() {
		if err := c.collect(e); err != nil {
			return err
		}
	}

	for _, child := range n.Children() {
		c.uses[child.ID()]++
		if c.uses[child.ID()] > 1 {
			continue
		}

		if err := c.prepare(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) collect(e sql.Expression) error {
	var err error
	expression.Inspect(e, func(e sql.Expression) bool {
		if err != nil {
			return false
		}

		switch e := e.(type) {
		case *expression.Parameter:
			if _, ok := c.names[e]; !ok {
				c.names[e] = ""
				c.params = append(c.params, e)
			}
		case FunctionCall:
			err = c.define(e)
		}
		return true
	})

	return err
}

func (c *compiler) define(f FunctionCall) error {
	definition, err := f.Definition(c.dialect)
	if err != nil {
		return err
	}

	name := f.FunctionName()
	fingerprint, err := hashstructure.Hash(struct {
		Name       string
		Definition string
	}{name, definition}, nil)
	if err != nil {
		return err
	}

	if existing, ok := c.functions[name]; ok {
		if existing.fingerprint != fingerprint {
			return sql.ErrDuplicateFunction.New(name)
		}
		return nil
	}

	c.functions[name] = function{definition: definition, fingerprint: fingerprint}
	c.functionOrder = append(c.functionOrder, name)
	return nil
}

// nameParameters gives a name to the collected parameters. Named
// parameters keep theirs and unnamed ones get the first free param_N.
func (c *compiler) nameParameters() error {
	for _, p := range c.params {
		if !p.IsNamed() {
			continue
		}

		if other, ok := c.paramNames[p.Name()]; ok && other != p {
			return sql.ErrDuplicateParameter.New(p.Name())
		}
		c.names[p] = p.Name()
		c.paramNames[p.Name()] = p
	}

	next := 0
	for _, p := range c.params {
		if c.names[p] != "" {
			continue
		}

		for {
			name := fmt.Sprintf("param_%d", next)
			next++
			if _, ok := c.paramNames[name]; !ok {
				c.names[p] = name
				c.paramNames[name] = p
				break
			}
		}
	}
	return nil
}

func (c *compiler) nextAlias() string {
	alias := fmt.Sprintf("t%d", c.aliases)
	c.aliases++
	return alias
}

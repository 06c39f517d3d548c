package compiler

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
)

const indentUnit = "  "

// fromItem is a source of rows of a SELECT block: either a reference to a
// table or a common table expression, or a subquery.
type fromItem struct {
	// node is the node whose rows the item provides.
	node  sql.Node
	text  string
	query string
	alias string
}

func (f *fromItem) render(indent string) string {
	if f.query != "" {
		return "(\n" + indentLines(f.query, indent+indentUnit) + "\n" + indent + ") " + f.alias
	}

	if f.alias == "" {
		return f.text
	}
	return f.text + " " + f.alias
}

type joinItem struct {
	kind string
	from *fromItem
	on   []string
}

type limitClause struct {
	count  int64
	offset int64
}

// selectBlock is a single SELECT statement being built.
type selectBlock struct {
	star    string
	items   []string
	from    *fromItem
	joins   []joinItem
	where   []string
	groupBy int
	orderBy []string
	limit   *limitClause
	// passthrough are the names of the columns that can be referenced in a
	// WHERE clause added to this block. It's nil if the block can't take
	// more predicates.
	passthrough mapset.Set[string]
}

func (b *selectBlock) participants() []*fromItem {
	result := []*fromItem{b.from}
	for _, j := range b.joins {
		result = append(result, j.from)
	}
	return result
}

// qualifier returns the alias of the participant the column is taken from.
func (b *selectBlock) qualifier(col *expression.Column) string {
	items := b.participants()
	for _, p := range items {
		if plan.InScope(p.node, col.Table()) {
			return p.alias
		}
	}

	for _, p := range items {
		if p.node.Schema().Contains(col.Name()) {
			return p.alias
		}
	}
	return ""
}

func (b *selectBlock) String() string {
	var buf strings.Builder

	columns := b.items
	if b.star != "" {
		columns = append([]string{b.star}, b.items...)
	}
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(columns, ", "))

	if b.from != nil {
		buf.WriteString("\nFROM ")
		buf.WriteString(b.from.render(""))
	}

	for _, j := range b.joins {
		buf.WriteString("\n" + indentUnit + j.kind + " ")
		buf.WriteString(j.from.render(indentUnit))
		if len(j.on) > 0 {
			buf.WriteString("\n    ON ")
			buf.WriteString(strings.Join(j.on, " AND\n       "))
		}
	}

	if len(b.where) > 0 {
		buf.WriteString("\nWHERE ")
		buf.WriteString(strings.Join(b.where, " AND\n      "))
	}

	if b.groupBy > 0 {
		ordinals := make([]string, b.groupBy)
		for i := range ordinals {
			ordinals[i] = strconv.Itoa(i + 1)
		}
		buf.WriteString("\nGROUP BY ")
		buf.WriteString(strings.Join(ordinals, ", "))
	}

	if len(b.orderBy) > 0 {
		buf.WriteString("\nORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit != nil {
		buf.WriteString("\nLIMIT ")
		buf.WriteString(strconv.FormatInt(b.limit.count, 10))
		if b.limit.offset > 0 {
			buf.WriteString(" OFFSET ")
			buf.WriteString(strconv.FormatInt(b.limit.offset, 10))
		}
	}

	return buf.String()
}

type cteDefinition struct {
	alias string
	query string
}

func renderWith(ctes []cteDefinition, body string) string {
	if len(ctes) == 0 {
		return body
	}

	defs := make([]string, len(ctes))
	for i, cte := range ctes {
		defs[i] = cte.alias + " AS (\n" + indentLines(cte.query, indentUnit) + "\n)"
	}
	return "WITH " + strings.Join(defs, ",\n") + "\n" + body
}

func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}

var joinKeywords = map[plan.JoinType]string{
	plan.JoinTypeInner: "INNER JOIN",
	plan.JoinTypeLeft:  "LEFT OUTER JOIN",
	plan.JoinTypeRight: "RIGHT OUTER JOIN",
	plan.JoinTypeFull:  "FULL OUTER JOIN",
	plan.JoinTypeCross: "CROSS JOIN",
}

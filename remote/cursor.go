package remote

import "gopkg.in/src-d/go-bqsql.v0/sql"

// Cursor iterates over the rows of a materialized result.
type Cursor struct {
	table *sql.ResultTable
	pos   int
}

// NewCursor returns a cursor positioned before the first row of the table.
func NewCursor(table *sql.ResultTable) *Cursor {
	return &Cursor{table: table}
}

// Schema returns the schema of the rows.
func (c *Cursor) Schema() sql.Schema {
	return c.table.Schema
}

// FetchOne returns the next row. The second value is false if there are no
// more rows.
func (c *Cursor) FetchOne() (sql.Row, bool) {
	if c.pos >= len(c.table.Rows) {
		return nil, false
	}

	row := c.table.Rows[c.pos]
	c.pos++
	return row, true
}

// FetchMany returns at most n of the next rows.
func (c *Cursor) FetchMany(n int) []sql.Row {
	if n < 0 {
		n = 0
	}

	end := c.pos + n
	if end > len(c.table.Rows) {
		end = len(c.table.Rows)
	}

	rows := c.table.Rows[c.pos:end]
	c.pos = end
	return rows
}

// FetchAll returns all the remaining rows.
func (c *Cursor) FetchAll() []sql.Row {
	return c.FetchMany(len(c.table.Rows) - c.pos)
}

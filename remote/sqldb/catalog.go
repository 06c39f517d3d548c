package sqldb

import (
	"context"
	gosql "database/sql"
	"strings"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Catalog lists the tables of a SQLite database. Attached databases are
// datasets, "main" being the default one. Projects are ignored.
type Catalog struct {
	db *gosql.DB
}

var _ sql.Catalog = (*Catalog)(nil)

// NewCatalog returns a catalog of the given SQLite database.
func NewCatalog(db *gosql.DB) *Catalog {
	return &Catalog{db}
}

func schemaName(id sql.DatasetID) string {
	if id.Dataset == "" {
		return "main"
	}
	return id.Dataset
}

// DatasetExists implements the sql.Catalog interface.
func (c *Catalog) DatasetExists(ctx context.Context, id sql.DatasetID) (bool, error) {
	rows, err := c.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	name := schemaName(id)
	for rows.Next() {
		var (
			seq        int
			db, source gosql.NullString
		)
		if err := rows.Scan(&seq, &db, &source); err != nil {
			return false, err
		}

		if db.String == name {
			return true, nil
		}
	}
	return false, rows.Err()
}

// ListTables implements the sql.Catalog interface.
func (c *Catalog) ListTables(ctx context.Context, id sql.DatasetID) ([]string, error) {
	ok, err := c.DatasetExists(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, sql.ErrDatasetNotFound.New(id)
	}

	query := "SELECT name FROM " + quote(schemaName(id)) + ".sqlite_master " +
		"WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name"
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Describe implements the sql.Catalog interface. Columns with a declared
// type that has no equivalent are described as strings.
func (c *Catalog) Describe(ctx context.Context, id sql.TableID) (*sql.TableMetadata, error) {
	query := "PRAGMA " + quote(schemaName(id.DatasetID())) + ".table_info(" + quote(id.Name) + ")"
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schema sql.Schema
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull bool
			dflt    gosql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}

		t := TypeOf(typ)
		if t == nil {
			t = sql.String
		}

		schema = append(schema, &sql.Column{
			Name:     name,
			Type:     t,
			Nullable: !notNull,
			Source:   id.Name,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(schema) == 0 {
		return nil, sql.ErrTableNotFound.New(id, "")
	}

	return &sql.TableMetadata{ID: id, Schema: schema}, nil
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

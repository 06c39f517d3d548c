// Package sqldb implements an engine running queries through database/sql.
// Queries must be compiled with the dialect of the database, such as
// compiler.SQLite.
package sqldb

import (
	"context"
	gosql "database/sql"
	"strings"
	"time"

	"gopkg.in/src-d/go-bqsql.v0/remote"
	"gopkg.in/src-d/go-bqsql.v0/sql"
)

const backend = "database/sql"

// Engine runs queries in a database.
type Engine struct {
	db *gosql.DB
}

var _ remote.Engine = (*Engine)(nil)

// New returns an engine running queries in the given database.
func New(db *gosql.DB) *Engine {
	return &Engine{db}
}

// Open opens the database with the given driver and returns an engine
// running queries in it.
func Open(ctx context.Context, driver, dsn string) (*Engine, error) {
	db, err := gosql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// DB returns the database of the engine.
func (e *Engine) DB() *gosql.DB {
	return e.db
}

// Close closes the database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Query implements the remote.Engine interface. Parameters are passed as
// named arguments.
func (e *Engine) Query(ctx context.Context, req *remote.Request) (remote.Result, error) {
	args := make([]interface{}, len(req.Parameters))
	for i, p := range req.Parameters {
		v, err := argument(p)
		if err != nil {
			return nil, err
		}
		args[i] = gosql.Named(p.Name, v)
	}

	rows, err := e.db.QueryContext(ctx, req.SQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var values [][]interface{}
	for rows.Next() {
		row := make([]interface{}, len(types))
		ptrs := make([]interface{}, len(types))
		for i := range row {
			ptrs[i] = &row[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		values = append(values, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &remote.Rows{Schema: schemaOf(types, values), Values: values}, nil
}

// argument converts a parameter to a value the drivers understand.
func argument(p remote.Parameter) (interface{}, error) {
	switch p.Type.(type) {
	case sql.StructType, sql.ArrayType:
		return nil, sql.ErrUnsupportedBackendType.New(p.Type, backend)
	}

	v, err := sql.Decode(p.Value, p.Type)
	if err != nil || v == nil {
		return nil, err
	}

	switch p.Type.Kind() {
	case sql.KindDate:
		return v.(time.Time).Format("2006-01-02"), nil
	case sql.KindTimestamp:
		return v.(time.Time).Format("2006-01-02 15:04:05.999999"), nil
	default:
		return v, nil
	}
}

// schemaOf builds the schema of the rows from the declared types of the
// columns. Columns without a declared type, such as expressions, take the
// type of their first non NULL value.
func schemaOf(types []*gosql.ColumnType, values [][]interface{}) sql.Schema {
	schema := make(sql.Schema, len(types))
	for i, ct := range types {
		nullable, ok := ct.Nullable()
		schema[i] = &sql.Column{
			Name:     ct.Name(),
			Type:     TypeOf(ct.DatabaseTypeName()),
			Nullable: nullable || !ok,
		}

		if schema[i].Type != nil {
			continue
		}

		schema[i].Type = sql.String
		for _, row := range values {
			if row[i] == nil {
				continue
			}

			if t, err := sql.TypeOf(row[i]); err == nil {
				schema[i].Type = t
			}
			break
		}
	}
	return schema
}

// TypeOf returns the type of a column declared with the given database
// type name, or nil if it's unknown.
func TypeOf(name string) sql.Type {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	switch name {
	case "BOOL", "BOOLEAN":
		return sql.Boolean
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "INT64":
		return sql.Int64
	case "REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL", "FLOAT64":
		return sql.Float64
	case "TEXT", "VARCHAR", "CHAR", "STRING", "CLOB":
		return sql.String
	case "DATE":
		return sql.Date
	case "DATETIME", "TIMESTAMP":
		return sql.Timestamp
	default:
		return nil
	}
}

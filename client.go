// Package bqsql compiles relational expressions into SQL and runs them in a
// remote analytical engine.
package bqsql

import (
	"context"
	"regexp"
	"sync"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-bqsql.v0/remote"
	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/compiler"
	"gopkg.in/src-d/go-bqsql.v0/sql/expression"
	"gopkg.in/src-d/go-bqsql.v0/sql/plan"
	"gopkg.in/src-d/go-bqsql.v0/sql/udf"
)

// Client compiles queries and runs them in a remote engine, taking table
// descriptions from a catalog.
type Client struct {
	catalog   sql.Catalog
	engine    remote.Engine
	functions *udf.Registry

	project  string
	dialect  *compiler.Dialect
	bindMode bool
	options  *sql.Options
	tracer   opentracing.Tracer

	mu      sync.RWMutex
	dataset sql.DatasetID
	err     error
}

// Option configures a client.
type Option func(*Client)

// WithDialect sets the dialect the queries are compiled to.
func WithDialect(d *compiler.Dialect) Option {
	return func(c *Client) {
		c.dialect = d
	}
}

// WithQueryParameters sends bound parameters as query parameters instead
// of inlining them in the SQL.
func WithQueryParameters() Option {
	return func(c *Client) {
		c.bindMode = true
	}
}

// WithOptions sets the render options of the client. The process wide
// sql.DefaultOptions are used otherwise.
func WithOptions(o *sql.Options) Option {
	return func(c *Client) {
		c.options = o
	}
}

// WithTracer sets the tracer of the spans of compilations and executions.
func WithTracer(t opentracing.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithDataset sets the default dataset, either "dataset" or
// "project.dataset".
func WithDataset(name string) Option {
	return func(c *Client) {
		c.dataset, c.err = sql.ParseDatasetID(name, c.project)
	}
}

// WithFunctions sets the registry of the user defined functions available
// through Call.
func WithFunctions(r *udf.Registry) Option {
	return func(c *Client) {
		c.functions = r
	}
}

// New creates a client running queries in the given project.
func New(project string, catalog sql.Catalog, engine remote.Engine, opts ...Option) (*Client, error) {
	c := &Client{
		catalog:   catalog,
		engine:    engine,
		functions: udf.NewRegistry(),
		project:   project,
		dialect:   compiler.BigQuery,
		options:   sql.DefaultOptions,
		tracer:    opentracing.NoopTracer{},
		dataset:   sql.DatasetID{Project: project},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// NewFromConfig creates a client with the given configuration.
func NewFromConfig(cfg *Config, catalog sql.Catalog, engine remote.Engine, opts ...Option) (*Client, error) {
	base, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}
	return New(cfg.ProjectID, catalog, engine, append(base, opts...)...)
}

// Project returns the project queries are run in.
func (c *Client) Project() string {
	return c.project
}

// Functions returns the registry of user defined functions.
func (c *Client) Functions() *udf.Registry {
	return c.functions
}

// Call returns a call to the registered function with the given name.
func (c *Client) Call(name string, args ...sql.Expression) (*udf.Call, error) {
	return c.functions.Call(name, args...)
}

// Context returns the query context of the client for the given context.
func (c *Client) Context(ctx context.Context) *sql.Context {
	if sctx, ok := ctx.(*sql.Context); ok {
		return sctx
	}
	return sql.NewContext(ctx, sql.WithOptions(c.options), sql.WithTracer(c.tracer))
}

// Compile compiles an expression or table operation.
func (c *Client) Compile(
	ctx context.Context,
	root sql.Root,
	bindings expression.Bindings,
) (*compiler.CompiledQuery, error) {
	return compiler.Compile(c.Context(ctx), root, bindings, c.compileOptions()...)
}

func (c *Client) compileOptions() []compiler.Option {
	opts := []compiler.Option{compiler.WithDialect(c.dialect)}
	if c.bindMode {
		opts = append(opts, compiler.WithQueryParameters())
	}
	return opts
}

// Execute compiles and runs an expression or table operation, returning
// its materialized result. Every parameter must be bound.
func (c *Client) Execute(
	ctx context.Context,
	root sql.Root,
	bindings expression.Bindings,
) (*sql.ResultTable, error) {
	span, sctx := c.Context(ctx).Span("bqsql.Execute")
	defer span.Finish()

	q, err := compiler.Compile(sctx, root, bindings, c.compileOptions()...)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}

	if len(q.Unresolved) > 0 {
		name, _ := q.NameOf(q.Unresolved[0])
		span.SetTag("error", true)
		return nil, sql.ErrUnboundParameter.New(name)
	}

	span.SetTag(QueryHashLogField, q.Hash)
	res, err := c.run(sctx, span, q.SQL, q.Hash, q.Parameters)
	if err != nil {
		return nil, err
	}

	return remote.Materialize(res, q.Schema)
}

// ExecuteAsync would run the query in the background. It's not supported:
// it always fails with ErrAsyncNotImplemented and never reaches the engine.
func (c *Client) ExecuteAsync(context.Context, sql.Root, expression.Bindings) error {
	return sql.ErrAsyncNotImplemented.New()
}

// RawSQL runs a query as is, returning a cursor over its rows.
func (c *Client) RawSQL(
	ctx context.Context,
	query string,
	params ...compiler.QueryParameter,
) (*remote.Cursor, error) {
	span, sctx := c.Context(ctx).Span("bqsql.RawSQL")
	defer span.Finish()

	res, err := c.run(sctx, span, query, 0, params)
	if err != nil {
		return nil, err
	}

	table, err := remote.Materialize(res, nil)
	if err != nil {
		return nil, err
	}
	return remote.NewCursor(table), nil
}

func (c *Client) run(
	ctx *sql.Context,
	span opentracing.Span,
	query string,
	hash uint64,
	params []compiler.QueryParameter,
) (remote.Result, error) {
	dataset := c.CurrentDatabase().ID()
	req, err := remote.NewRequest(query, c.project, dataset.String(), params...)
	if err != nil {
		span.SetTag("error", true)
		return nil, err
	}

	span.SetTag(JobIDLogField, req.JobID.String())
	logger := logrus.WithFields(logrus.Fields{
		JobIDLogField:     req.JobID.String(),
		QueryHashLogField: hash,
		DatasetLogField:   dataset.String(),
	})

	start := time.Now()
	res, err := remote.Run(ctx, c.engine, req)
	logger = logger.WithField(DurationLogField, time.Since(start))
	if err != nil {
		span.SetTag("error", true)
		logger.WithField("error", err).Debug("query execution failed")
		return nil, err
	}

	logger.Debug("query executed")
	return res, nil
}

func (c *Client) datasetID(database string) (sql.DatasetID, error) {
	if database == "" {
		return c.CurrentDatabase().ID(), nil
	}
	return sql.ParseDatasetID(database, c.project)
}

// Table returns the remote table with the given name. If database is
// empty, the table is looked up in the current database. The name can't be
// qualified.
func (c *Client) Table(ctx context.Context, name, database string) (*plan.Table, error) {
	dataset, err := c.datasetID(database)
	if err != nil {
		return nil, err
	}
	return c.table(ctx, name, dataset)
}

func (c *Client) table(ctx context.Context, name string, dataset sql.DatasetID) (*plan.Table, error) {
	id, err := sql.NewTableID(name, dataset)
	if err != nil {
		return nil, err
	}

	meta, err := c.catalog.Describe(ctx, id)
	if err != nil {
		return nil, err
	}
	return plan.NewTable(meta)
}

// ExistsTable checks whether a table exists. If database is empty, the
// current database is used.
func (c *Client) ExistsTable(ctx context.Context, name, database string) (bool, error) {
	_, err := c.Table(ctx, name, database)
	switch {
	case err == nil:
		return true, nil
	case sql.ErrTableNotFound.Is(err), sql.ErrDatasetNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// ExistsDatabase checks whether a dataset exists.
func (c *Client) ExistsDatabase(ctx context.Context, name string) (bool, error) {
	id, err := sql.ParseDatasetID(name, c.project)
	if err != nil {
		return false, err
	}
	return c.catalog.DatasetExists(ctx, id)
}

// ListTables returns the tables of the current database whose name
// matches the regular expression like. An empty like matches every table.
func (c *Client) ListTables(ctx context.Context, like string) ([]string, error) {
	return c.CurrentDatabase().ListTables(ctx, like)
}

// SetDatabase changes the current database.
func (c *Client) SetDatabase(name string) error {
	id, err := sql.ParseDatasetID(name, c.project)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.dataset = id
	c.mu.Unlock()
	return nil
}

// CurrentDatabase returns the current database.
func (c *Client) CurrentDatabase() *Database {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Database{client: c, id: c.dataset}
}

// Database returns the dataset with the given name, either "dataset" or
// "project.dataset".
func (c *Client) Database(name string) (*Database, error) {
	id, err := sql.ParseDatasetID(name, c.project)
	if err != nil {
		return nil, err
	}
	return &Database{client: c, id: id}, nil
}

// Columns returns the names of the columns of a node as they are shown in
// query results.
func (c *Client) Columns(ctx context.Context, n sql.Node) []string {
	sctx := c.Context(ctx)
	schema := n.Schema()
	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = compiler.DisplayName(sctx, col)
	}
	return names
}

// Database is a dataset accessed through a client.
type Database struct {
	client *Client
	id     sql.DatasetID
}

// Name returns the name of the dataset, without project.
func (d *Database) Name() string {
	return d.id.Dataset
}

// ID returns the identifier of the dataset.
func (d *Database) ID() sql.DatasetID {
	return d.id
}

// Exists checks whether the dataset exists.
func (d *Database) Exists(ctx context.Context) (bool, error) {
	return d.client.catalog.DatasetExists(ctx, d.id)
}

// Table returns the table of the dataset with the given name.
func (d *Database) Table(ctx context.Context, name string) (*plan.Table, error) {
	return d.client.table(ctx, name, d.id)
}

// Tables returns the names of all the tables of the dataset.
func (d *Database) Tables(ctx context.Context) ([]string, error) {
	return d.ListTables(ctx, "")
}

// ListTables returns the tables of the dataset whose name matches the
// regular expression like. An empty like matches every table.
func (d *Database) ListTables(ctx context.Context, like string) ([]string, error) {
	names, err := d.client.catalog.ListTables(ctx, d.id)
	if err != nil || like == "" {
		return names, err
	}

	re, err := regexp.Compile(like)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, name := range names {
		if re.MatchString(name) {
			result = append(result, name)
		}
	}
	return result, nil
}

// Package remote defines how compiled queries are sent to the engine that
// runs them and how their results are read back.
package remote

import (
	"context"
	"fmt"

	uuid "github.com/satori/go.uuid"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/compiler"
)

// Engine runs queries.
type Engine interface {
	// Query runs the query of the request and returns its result. It must
	// return as soon as the context is cancelled.
	Query(ctx context.Context, req *Request) (Result, error)
}

// Parameter is a query parameter in its wire form.
type Parameter struct {
	Name string
	Type sql.Type
	// Value is the encoded value: a string for scalars, a positional list
	// for structs and a list for arrays. NULL is nil.
	Value interface{}
}

// Request is a query to be run by an engine.
type Request struct {
	// JobID identifies the execution.
	JobID uuid.UUID
	SQL   string
	// Project and Dataset are used to resolve table names without them.
	Project    string
	Dataset    string
	Parameters []Parameter
}

// NewRequest returns a request with a new job id to run the given query.
func NewRequest(query, project, dataset string, params ...compiler.QueryParameter) (*Request, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	req := &Request{
		JobID:   id,
		SQL:     query,
		Project: project,
		Dataset: dataset,
	}

	for _, p := range params {
		param, err := NewParameter(p)
		if err != nil {
			return nil, err
		}
		req.Parameters = append(req.Parameters, param)
	}
	return req, nil
}

// NewParameter encodes a bound query parameter. Structs with nested arrays
// or structs can't be sent as parameters.
func NewParameter(p compiler.QueryParameter) (Parameter, error) {
	if st, ok := p.Type.(sql.StructType); ok {
		for _, f := range st.Fields {
			switch f.Type.(type) {
			case sql.StructType, sql.ArrayType:
				return Parameter{}, sql.ErrUnsupportedBackendType.New(
					p.Type,
					fmt.Sprintf("query parameters (field %s of %s)", f.Name, p.Name),
				)
			}
		}
	}

	v, err := sql.Encode(p.Value, p.Type)
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{Name: p.Name, Type: p.Type, Value: v}, nil
}

// Run sends the request to the engine. Errors of the engine are wrapped in
// ErrRemoteExecution, unless the context was cancelled, in which case
// ErrQueryCancelled is returned.
func Run(ctx context.Context, engine Engine, req *Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, sql.ErrQueryCancelled.Wrap(err, req.JobID)
	}

	res, err := engine.Query(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, sql.ErrQueryCancelled.Wrap(err, req.JobID)
		}
		return nil, sql.ErrRemoteExecution.Wrap(err, req.JobID)
	}
	return res, nil
}

package mem

import (
	"context"
	"sync"

	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-bqsql.v0/remote"
	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// ErrNoResponse is returned by Engine when no response was registered for
// a query.
var ErrNoResponse = errors.NewKind("no response for query: %s")

// Handler computes the result of a request.
type Handler func(context.Context, *remote.Request) (remote.Result, error)

// Engine is a scripted remote engine. It answers every query with the
// response registered for its text and records the requests it receives.
type Engine struct {
	mu        sync.Mutex
	responses map[string]Handler
	fallback  Handler
	requests  []*remote.Request
}

var _ remote.Engine = (*Engine)(nil)

// NewEngine creates an engine without responses.
func NewEngine() *Engine {
	return &Engine{responses: make(map[string]Handler)}
}

// Respond makes the engine answer the given query with the given schema
// and rows.
func (e *Engine) Respond(query string, schema sql.Schema, rows ...[]interface{}) {
	e.Handle(query, func(context.Context, *remote.Request) (remote.Result, error) {
		return &remote.Rows{Schema: schema, Values: rows}, nil
	})
}

// Fail makes the engine fail the given query with the given error.
func (e *Engine) Fail(query string, err error) {
	e.Handle(query, func(context.Context, *remote.Request) (remote.Result, error) {
		return nil, err
	})
}

// Handle makes the engine answer the given query with the handler.
func (e *Engine) Handle(query string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[query] = h
}

// HandleAll sets the handler of the queries without a registered response.
func (e *Engine) HandleAll(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = h
}

// Requests returns the requests received so far.
func (e *Engine) Requests() []*remote.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*remote.Request(nil), e.requests...)
}

// Query implements the remote.Engine interface.
func (e *Engine) Query(ctx context.Context, req *remote.Request) (remote.Result, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	h, ok := e.responses[req.SQL]
	if !ok {
		h = e.fallback
	}
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if h == nil {
		return nil, ErrNoResponse.New(req.SQL)
	}
	return h(ctx, req)
}

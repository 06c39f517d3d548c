package sql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

// Context of the compilation or execution of a query.
type Context struct {
	context.Context
	options *Options
	tracer  opentracing.Tracer
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithOptions sets the options consulted by the compiler.
func WithOptions(o *Options) ContextOption {
	return func(ctx *Context) {
		ctx.options = o
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// NewContext creates a new query context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		options: DefaultOptions,
		tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context with default values.
func NewEmptyContext() *Context {
	return NewContext(context.TODO())
}

// Options returns the options of the context.
func (c *Context) Options() *Options {
	return c.options
}

// Span creates a new tracing span with the given context.
// It will return the span and a new context that should be passed to all
// children of this span.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, c.WithContext(ctx)
}

// WithContext returns a new context with the given underlying context.
func (c *Context) WithContext(ctx context.Context) *Context {
	nc := *c
	nc.Context = ctx
	return &nc
}

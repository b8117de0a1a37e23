package mediator

import (
	"context"
	"fmt"
	"reflect"
)

// Request is a command or query value, usually a pointer to a struct
type Request interface{}

// Response is whatever the request's handler returns
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a function to the handler signature used by middleware
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps every Send, e.g. for metrics
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// ErrNoHandler is returned by Send for a request type nobody registered
type ErrNoHandler struct {
	RequestType string
}

func (e *ErrNoHandler) Error() string {
	return fmt.Sprintf("no handler registered for type %s", e.RequestType)
}

// ErrUnexpectedResponse is returned by SendAs when the handler answered with another type
type ErrUnexpectedResponse struct {
	Want string
	Got  string
}

func (e *ErrUnexpectedResponse) Error() string {
	return fmt.Sprintf("unexpected response type %s, want %s", e.Got, e.Want)
}

// Mediator dispatches requests to their handlers
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	Use(middleware Middleware)
}

type mediator struct {
	handlers    map[reflect.Type]RequestHandler
	middlewares []Middleware
}

// NewMediator creates an empty mediator
func NewMediator() Mediator {
	return &mediator{handlers: make(map[reflect.Type]RequestHandler)}
}

// Register binds a handler to a request type; each type takes one handler
func (m *mediator) Register(requestType reflect.Type, handler RequestHandler) error {
	switch {
	case requestType == nil:
		return fmt.Errorf("request type cannot be nil")
	case handler == nil:
		return fmt.Errorf("handler cannot be nil")
	}
	if _, exists := m.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}
	m.handlers[requestType] = handler
	return nil
}

// Use appends a middleware. The first registered middleware runs outermost.
func (m *mediator) Use(middleware Middleware) {
	m.middlewares = append(m.middlewares, middleware)
}

// Send runs the request through the middleware chain to its handler
func (m *mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	requestType := reflect.TypeOf(request)
	handler, ok := m.handlers[requestType]
	if !ok {
		return nil, &ErrNoHandler{RequestType: requestType.String()}
	}

	next := HandlerFunc(handler.Handle)
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		mw, inner := m.middlewares[i], next
		next = func(ctx context.Context, request Request) (Response, error) {
			return mw(ctx, request, inner)
		}
	}
	return next(ctx, request)
}

// RegisterHandler registers a handler with the request type inferred from T
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	var zero T
	return m.Register(reflect.TypeOf(zero), handler)
}

// SendAs sends a request and asserts the response type. A handler that fails
// with a typed response (a stopped episode run) yields both the response and
// the error.
func SendAs[R Response](ctx context.Context, m Mediator, request Request) (R, error) {
	var zero R
	resp, err := m.Send(ctx, request)
	if resp == nil {
		return zero, err
	}
	typed, ok := resp.(R)
	if !ok {
		return zero, &ErrUnexpectedResponse{Want: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", resp)}
	}
	return typed, err
}

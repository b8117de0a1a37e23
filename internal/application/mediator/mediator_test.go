package mediator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
)

type echoCommand struct{ Value string }

type echoHandler struct{}

func (h *echoHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return request.(*echoCommand).Value, nil
}

func TestMediator_SendDispatchesByType(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoCommand](m, &echoHandler{}))

	// Act
	resp, err := m.Send(context.Background(), &echoCommand{Value: "hello"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "hello", resp)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoCommand](m, &echoHandler{}))

	// Act
	dupErr := mediator.RegisterHandler[*echoCommand](m, &echoHandler{})
	_, unknownErr := m.Send(context.Background(), "not a command")
	_, nilErr := m.Send(context.Background(), nil)

	// Assert
	assert.Error(t, dupErr)
	assert.Error(t, unknownErr)
	assert.Error(t, nilErr)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoCommand](m, &echoHandler{}))

	var calls []string
	trace := func(name string) mediator.Middleware {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			calls = append(calls, name+">")
			resp, err := next(ctx, request)
			calls = append(calls, "<"+name)
			return resp, err
		}
	}
	m.Use(trace("outer"))
	m.Use(trace("inner"))

	// Act
	_, err := m.Send(context.Background(), &echoCommand{Value: "x"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, calls)
}

func TestSendAs(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*echoCommand](m, &echoHandler{}))

	// Act
	value, err := mediator.SendAs[string](context.Background(), m, &echoCommand{Value: "typed"})
	_, wrongErr := mediator.SendAs[int](context.Background(), m, &echoCommand{Value: "typed"})
	_, missingErr := mediator.SendAs[string](context.Background(), m, 42)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "typed", value)
	var unexpected *mediator.ErrUnexpectedResponse
	require.ErrorAs(t, wrongErr, &unexpected)
	assert.Equal(t, "string", unexpected.Got)
	var noHandler *mediator.ErrNoHandler
	require.ErrorAs(t, missingErr, &noHandler)
	assert.Equal(t, "int", noHandler.RequestType)
}

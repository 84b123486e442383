package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	err := NewError(404, "Resource not found")
	assert.Equal(t, 404, err.Code)
	assert.Equal(t, "Resource not found", err.Message)
	assert.Empty(t, err.Details)
	assert.Equal(t, "status 404: Resource not found", err.Error())

	withDetails := NewError(400, "Invalid request", "missing field text")
	assert.Equal(t, "missing field text", withDetails.Details)
}

func TestWrapError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, 500, "throttle store unavailable")
	assert.Equal(t, 500, err.Code)
	assert.Equal(t, "throttle store unavailable", err.Message)
	assert.Equal(t, "connection refused", err.Details)
}

func TestAs(t *testing.T) {
	var target *CustomError

	require.True(t, As(ErrNotFound, &target))
	assert.Equal(t, 404, target.Code)

	target = nil
	assert.False(t, As(errors.New("plain"), &target))
	assert.Nil(t, target)

	assert.False(t, As(nil, &target))
}

func TestWithCause(t *testing.T) {
	err := NewError(500, "Internal server error").WithCause(errors.New("disk full"))
	assert.Equal(t, "disk full", err.Details)

	unchanged := NewError(500, "Internal server error").WithCause(nil)
	assert.Empty(t, unchanged.Details)
}

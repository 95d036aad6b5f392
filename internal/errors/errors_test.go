package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "name", Message: "required field"},
		{Field: "contact", Message: "required field"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestInvalidStatusError(t *testing.T) {
	err := NewInvalidStatusError("shipped")

	assert.Contains(t, err.Error(), "shipped")

	ise, ok := IsInvalidStatusError(err)
	assert.True(t, ok)
	assert.Equal(t, "shipped", ise.Status)

	_, ok = IsInvalidStatusError(errors.New("other"))
	assert.False(t, ok)
}

func TestInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransitionError("new", "ready")

	assert.Contains(t, err.Error(), "new")
	assert.Contains(t, err.Error(), "ready")

	ite, ok := IsInvalidTransitionError(err)
	assert.True(t, ok)
	assert.Equal(t, "new", ite.From)
	assert.Equal(t, "ready", ite.To)

	_, ok = IsInvalidTransitionError(NewNotFoundError("nope"))
	assert.False(t, ok)
}

func TestDeadlockError(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	de, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", de.Message)

	_, ok = IsDeadlockError(errors.New("other"))
	assert.False(t, ok)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestInternalError_WithoutCause(t *testing.T) {
	err := NewInternalError("standalone", nil)

	assert.Equal(t, "standalone", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewStoreUnavailableError("failed to create project", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORE_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("project")))
	assert.True(t, IsAlreadyLinked(NewAlreadyLinkedError(42)))
	assert.True(t, IsInvalidTitle(NewInvalidTitleError("dup")))
	assert.True(t, IsUpstreamUnavailable(NewUpstreamUnavailableError("down", nil)))

	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
	assert.False(t, IsAlreadyLinked(NewNotFoundError("project")))
}

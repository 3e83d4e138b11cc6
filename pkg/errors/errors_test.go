package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("user", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized(nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden(nil).StatusCode())
	assert.Equal(t, http.StatusTooManyRequests, TooManyRequests("slow down").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(io.EOF).StatusCode())
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("loading user: %w", NotFound("user", io.EOF))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, ErrNotFound, appErr.Code)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "user not found: EOF", appErr.Error())

	_, ok = As(io.EOF)
	assert.False(t, ok)
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("organization"), http.StatusNotFound},
		{Conflict("taken"), http.StatusConflict},
		{PaymentRequired("setup"), http.StatusPaymentRequired},
		{Upstream("stripe", nil), http.StatusBadGateway},
		{Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create organization: %w", Conflict("slug already in use"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "slug already in use", appErr.Message)
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindConflict))
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "organization not found", NotFound("organization").Error())
	assert.Equal(t, "internal server error: boom", Internal(fmt.Errorf("boom")).Error())
}

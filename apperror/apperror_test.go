package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NewNotFound("project", "42"), http.StatusNotFound},
		{"invalid input", NewInvalidInput("bad", nil), http.StatusBadRequest},
		{"validation", NewValidation(map[string]string{"email": "Enter a valid email address."}), http.StatusBadRequest},
		{"permission", NewPermissionDenied("add disabled"), http.StatusForbidden},
		{"conflict", NewConflict("project", "slug", "x"), http.StatusConflict},
		{"unauthorized", NewUnauthorized("bad password", nil), http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("load: %w", NewNotFound("skill", "1")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToHTTPStatus(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create: %w", NewValidation(map[string]string{
		"slug":  "already exists",
		"email": "invalid",
	}))

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "create: validation failed: email: invalid; slug: already exists", err.Error())
	assert.Equal(t, "already exists", FieldErrors(err)["slug"])
	assert.Nil(t, FieldErrors(errors.New("other")))
}

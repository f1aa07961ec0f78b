package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", NewValidationError("bad"), CodeValidation},
		{"not found", NewNotFoundError("Post", 3), CodeNotFound},
		{"forbidden", NewForbiddenError("nope"), CodeForbidden},
		{"wrapped", fmt.Errorf("service: %w", NewConflictError("taken")), CodeConflict},
		{"plain error", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	require.NoError(t, fe.Err())

	fe.Add("title", "The title field is required.")
	fe.Add("title", "The title may not be greater than 255 characters.")
	fe.Add("category", "The selected category is invalid.")

	err := fe.Err()
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Len(t, appErr.Fields["title"], 2)
	assert.Len(t, appErr.Fields["category"], 1)
}

func TestInternalError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: connection reset", err.Error())
}

package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"roombook/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	fields := map[string]string{"start_time": "slot taken"}

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantMsg    string
		wantFields map[string]string
	}{
		{
			name:     "bad request from error",
			err:      failure.BadRequest(errors.New("failed to decode request body")),
			wantCode: http.StatusBadRequest,
			wantMsg:  "failed to decode request body",
		},
		{
			name:     "bad request from string",
			err:      failure.BadRequestFromString("update request cannot be empty"),
			wantCode: http.StatusBadRequest,
			wantMsg:  "update request cannot be empty",
		},
		{
			name:     "unauthorized",
			err:      failure.Unauthorized("Token has expired"),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Token has expired",
		},
		{
			name:     "not found",
			err:      failure.NotFound("booking not found"),
			wantCode: http.StatusNotFound,
			wantMsg:  "booking not found",
		},
		{
			name:       "validation",
			err:        failure.Validation("invalid booking", map[string]string{"booking_date": "weekend"}),
			wantCode:   http.StatusBadRequest,
			wantMsg:    "invalid booking",
			wantFields: map[string]string{"booking_date": "weekend"},
		},
		{
			name:       "conflict",
			err:        failure.ConflictWithFields("slot taken", fields),
			wantCode:   http.StatusConflict,
			wantMsg:    "slot taken",
			wantFields: fields,
		},
		{
			name:     "forbidden",
			err:      failure.ForbiddenError,
			wantCode: http.StatusForbidden,
			wantMsg:  "You don't have the required permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, failure.IsFailure(tt.err))
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantFields, failure.GetFields(tt.err))
		})
	}
}

func TestBadRequestNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestWrapped(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", failure.ConflictWithFields("slot taken", nil))

	assert.True(t, failure.IsFailure(wrapped))
	assert.True(t, failure.IsConflict(wrapped))
	assert.Equal(t, http.StatusConflict, failure.GetCode(wrapped))
	assert.Equal(t, "slot taken", failure.GetMessage(wrapped))
}

func TestPlainError(t *testing.T) {
	err := errors.New("pq: connection refused")

	assert.False(t, failure.IsFailure(err))
	assert.False(t, failure.IsConflict(err))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	assert.Nil(t, failure.GetFields(err))
	assert.Empty(t, failure.GetMessage(err))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
}

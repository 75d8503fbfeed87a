package validator_test

import (
	"net/http"
	"roombook/shared/failure"
	"roombook/shared/validator"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusChange struct {
	Status string `json:"status"           validate:"required,oneof=pending approved rejected"`
	Reason string `json:"rejection_reason" validate:"omitempty,max=10"`
}

type roomForm struct {
	Name      string   `json:"name"      validate:"notblank"`
	Amenities []string `json:"amenities" validate:"omitempty,dive,notblank"`
	Image     string   `json:"image"     validate:"omitempty,imageref=image/png image/jpeg"`
}

type passwordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,nefield=CurrentPassword"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantMsg    string
		wantFields map[string]string
	}{
		{
			name: "valid",
			body: `{"status":"approved"}`,
		},
		{
			name:     "malformed json",
			body:     `{"status":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:       "missing status",
			body:       `{}`,
			wantCode:   http.StatusBadRequest,
			wantMsg:    "status is required",
			wantFields: map[string]string{"status": "status is required"},
		},
		{
			name:     "unknown status and long reason",
			body:     `{"status":"cancelled","rejection_reason":"far too long a reason"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "status must be one of pending approved rejected",
			wantFields: map[string]string{
				"status":           "status must be one of pending approved rejected",
				"rejection_reason": "rejection_reason must be at most 10 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req statusChange

			err := validator.Validate(strings.NewReader(tt.body), &req)
			if tt.wantCode == 0 {
				require.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
				assert.Equal(t, tt.wantFields, failure.GetFields(err))
			}
		})
	}
}

func TestDecodeSkipsRules(t *testing.T) {
	var req statusChange

	require.NoError(t, validator.Decode(strings.NewReader(`{"status":"cancelled"}`), &req))
	assert.Equal(t, "cancelled", req.Status)
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validator.ValidateStruct(&roomForm{Name: "Ruang Rapat A", Amenities: []string{"projector"}}))

	err := validator.ValidateStruct(&roomForm{Name: "   "})
	assert.Equal(t, map[string]string{"name": "name must not be blank"}, failure.GetFields(err))

	err = validator.ValidateStruct(&roomForm{Name: "Ruang Rapat A", Amenities: []string{"whiteboard", " "}})
	assert.Contains(t, failure.GetFields(err), "amenities[1]")
}

func TestImageReference(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		wantErr bool
	}{
		{name: "no image", image: ""},
		{name: "https url", image: "https://cdn.example.com/rooms/a.jpg"},
		{name: "png data url", image: "data:image/png;base64,iVBORw0KGgo="},
		{name: "disallowed data url type", image: "data:application/pdf;base64,JVBERi0=", wantErr: true},
		{name: "relative path", image: "/rooms/a.jpg", wantErr: true},
		{name: "other scheme", image: "ftp://files.example.com/a.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&roomForm{Name: "Ruang Rapat A", Image: tt.image})
			if tt.wantErr {
				assert.Equal(t, "image must be an http(s) URL or a data URL of type image/png image/jpeg", err.Error())

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, validator.FieldErrors(&passwordChange{CurrentPassword: "password", NewPassword: "s3cretpass"}))

	got := validator.FieldErrors(&passwordChange{CurrentPassword: "password", NewPassword: "password"})
	assert.Equal(t, map[string]string{"new_password": "nefield"}, got)

	got = validator.FieldErrors(&passwordChange{})
	assert.Equal(t, map[string]string{"current_password": "required", "new_password": "required"}, got)
}

package base64_test

import (
	"roombook/shared/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContentType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "png room photo", input: "data:image/png;base64,iVBORw0KGgo=", want: "image/png"},
		{name: "jpeg room photo", input: "data:image/jpeg;base64,/9j/4AAQ", want: "image/jpeg"},
		{name: "parameters stay with the type", input: "data:image/svg+xml;charset=utf-8;base64,PHN2Zz4=", want: "image/svg+xml;charset=utf-8"},
		{name: "plain url", input: "https://cdn.example.com/rooms/a.jpg"},
		{name: "missing data prefix", input: "image/png;base64,iVBORw0KGgo="},
		{name: "missing base64 marker", input: "data:image/png,iVBORw0KGgo="},
		{name: "empty media type", input: "data:;base64,"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base64.GetContentType(tt.input))
		})
	}
}

func TestDecode(t *testing.T) {
	data, contentType, err := base64.Decode("data:text/plain;base64,SGVsbG8gV29ybGQ=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, "Hello World", string(data))

	_, _, err = base64.Decode("https://cdn.example.com/rooms/a.jpg")
	assert.ErrorIs(t, err, base64.ErrNotDataURL)

	_, _, err = base64.Decode("data:image/png;base64,@@@")
	assert.Error(t, err)

	assert.True(t, base64.IsDataURL("data:image/png;base64,AA=="))
	assert.False(t, base64.IsDataURL("/images/room.png"))
}

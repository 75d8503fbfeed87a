// Package base64 handles RFC 2397 data URLs carrying base64 payloads, as sent by
// forms that embed images inline.
package base64

import (
	stdbase64 "encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"
)

var ErrNotDataURL = errors.New("value is not a base64 data url")

// IsDataURL reports whether value looks like data:<type>;base64,<payload>.
func IsDataURL(value string) bool {
	return GetContentType(value) != ""
}

// GetContentType returns the media type of a data URL, or "" when value is not one.
func GetContentType(file string) string {
	if !strings.HasPrefix(file, dataPrefix) {
		return ""
	}

	end := strings.Index(file, base64Marker)
	if end <= len(dataPrefix) {
		return ""
	}

	return file[len(dataPrefix):end]
}

// Decode returns the payload and media type of a data URL.
func Decode(file string) ([]byte, string, error) {
	contentType := GetContentType(file)
	if contentType == "" {
		return nil, "", ErrNotDataURL
	}

	payload := file[strings.Index(file, base64Marker)+len(base64Marker):]

	data, err := stdbase64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data url payload: %w", err)
	}

	return data, contentType, nil
}

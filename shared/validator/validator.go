package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"roombook/shared/base64"
	"roombook/shared/failure"
	"slices"
	"strings"

	val "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate *val.Validate

// imageReference accepts an http(s) URL or a base64 data URL whose media type is one of
// the space separated types in the tag parameter.
func imageReference(field val.FieldLevel) bool {
	value := field.Field().String()

	if contentType := base64.GetContentType(value); contentType != "" {
		return slices.Contains(strings.Fields(field.Param()), contentType)
	}

	parsed, err := url.Parse(value)

	return err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// jsonFieldName reports fields by their json name so error maps match request payloads.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	for tag, fn := range map[string]val.Func{
		"notblank": validators.NotBlank,
		"imageref": imageReference,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Decode reads JSON from r into data without validating it.
func Decode[T any](r io.Reader, data *T) error {
	err := json.NewDecoder(r).Decode(data)
	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return nil
}

// Validate decodes JSON from r into data and checks its validate tags.
func Validate[T any](r io.Reader, data *T) error {
	if err := Decode(r, data); err != nil {
		return err
	}

	return ValidateStruct(data)
}

// ValidateStruct reports the first broken rule as the message and every broken field in Fields.
func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.Validation(message(err), fieldMessages(err)) //nolint:wrapcheck
	}

	return nil
}

// FieldErrors validates data and returns the failing tag per json field name.
// A nil map means every rule passed.
func FieldErrors[T any](data *T) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return map[string]string{"": err.Error()}
	}

	res := make(map[string]string, len(valErrors))
	for _, valErr := range valErrors {
		if _, exist := res[valErr.Field()]; !exist {
			res[valErr.Field()] = valErr.Tag()
		}
	}

	return res
}

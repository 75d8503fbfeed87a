package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"notblank": "{field} must not be blank",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be at most {param} characters",
	"min":      "{field} must be at least {param} characters",
	"nefield":  "{field} must differ from {param}",
	"eqfield":  "{field} must match {param}",
	"imageref": "{field} must be an http(s) URL or a data URL of type {param}",
}

func render(valErr val.FieldError) string {
	errStr := messages[valErr.Tag()]
	if errStr == "" {
		return ""
	}

	errStr = strings.ReplaceAll(errStr, "{field}", valErr.Field())

	return strings.ReplaceAll(errStr, "{param}", valErr.Param())
}

func message(err error) string {
	var valErrors val.ValidationErrors

	if errors.As(err, &valErrors) {
		for _, valErr := range valErrors {
			if errStr := render(valErr); errStr != "" {
				return errStr
			}
		}

		return valErrors.Error()
	}

	return err.Error()
}

func fieldMessages(err error) map[string]string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return nil
	}

	res := make(map[string]string, len(valErrors))

	for _, valErr := range valErrors {
		if _, exist := res[valErr.Field()]; exist {
			continue
		}

		msg := render(valErr)
		if msg == "" {
			msg = valErr.Error()
		}

		res[valErr.Field()] = msg
	}

	return res
}

package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// productionMessage replaces internal error messages in production.
const productionMessage = "An error occurred"

// Normalize converts any error into an *Error at the HTTP boundary.
// Errors already in the taxonomy pass through unchanged. Schema and decode
// failures become 400 VALIDATION_ERROR with per-field details. Everything
// else becomes a 500 SERVER_ERROR whose message is suppressed in production.
func Normalize(err error, production bool) *Error {
	if err == nil {
		return nil
	}

	if e, ok := As(err); ok {
		if production && e.Kind == KindServer {
			return &Error{
				Kind:    e.Kind,
				Message: productionMessage,
				Code:    e.Code,
				Status:  e.Status,
				Err:     e,
			}
		}
		return e
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return FromValidator(verrs).WithCause(err)
	}

	if details, ok := decodeDetails(err); ok {
		return Validation("", details).WithCause(err)
	}

	message := err.Error()
	if production {
		message = productionMessage
	}
	return Server(message, err)
}

// FromValidator builds a validation error from validator field errors.
// Details are keyed by the dotted field path without the root struct name.
func FromValidator(verrs validator.ValidationErrors) *Error {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if _, exists := details[path]; exists {
			continue
		}
		details[path] = FieldMessage(fe)
	}
	return Validation("", details)
}

// FieldMessage renders a human-readable message for a failed constraint.
func FieldMessage(fe validator.FieldError) string {
	name := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "email":
		return "Invalid email address"
	case "url", "http_url":
		return fmt.Sprintf("Invalid %s URL", strings.ToLower(fe.Field()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric", "number":
		return fmt.Sprintf("%s must be a number", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// decodeDetails maps JSON decoding failures to field details.
func decodeDetails(err error) (map[string]string, bool) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &typeErr):
		path := typeErr.Field
		if path == "" {
			path = "body"
		}
		return map[string]string{path: fmt.Sprintf("expected %s", typeErr.Type.String())}, true
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return map[string]string{"body": "Malformed JSON"}, true
	case errors.Is(err, io.EOF):
		return map[string]string{"body": "Request body is required"}, true
	}
	return nil, false
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// fieldLabel capitalizes the first letter of a field name.
func fieldLabel(field string) string {
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

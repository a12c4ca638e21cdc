// Package validation provides pipeline stages that parse and validate a
// request source (body, query or URL params) against a schema struct.
//
// Schemas are plain structs with `json` tags for field names and `validate`
// tags for constraints (go-playground/validator). On success the selected
// source is replaced with the parsed value, so handlers never see raw input.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/pipeline"
)

// Source selects the part of the request a schema applies to.
type Source string

const (
	SourceBody   Source = "body"
	SourceQuery  Source = "query"
	SourceParams Source = "params"
)

// Normalizer is implemented by schemas that apply defaults or coercions
// (trimming, lowercasing) before constraints are checked.
type Normalizer interface {
	Normalize()
}

// Validator wraps a configured validator instance.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates a schema value and returns a taxonomy error on failure.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperr.FromValidator(verrs)
		}
		return apperr.Validation("", map[string]string{"body": err.Error()})
	}
	return nil
}

type contextKey struct {
	source Source
}

// Body returns a stage validating the JSON request body as T.
func Body[T any](v *Validator) pipeline.Stage {
	return stage[T](v, SourceBody)
}

// Query returns a stage validating the query string as T.
func Query[T any](v *Validator) pipeline.Stage {
	return stage[T](v, SourceQuery)
}

// Params returns a stage validating chi URL params as T.
func Params[T any](v *Validator) pipeline.Stage {
	return stage[T](v, SourceParams)
}

// BodyFrom returns the validated body stored by Body.
func BodyFrom[T any](ctx context.Context) (T, bool) {
	return fromContext[T](ctx, SourceBody)
}

// QueryFrom returns the validated query stored by Query.
func QueryFrom[T any](ctx context.Context) (T, bool) {
	return fromContext[T](ctx, SourceQuery)
}

// ParamsFrom returns the validated params stored by Params.
func ParamsFrom[T any](ctx context.Context) (T, bool) {
	return fromContext[T](ctx, SourceParams)
}

func fromContext[T any](ctx context.Context, src Source) (T, bool) {
	v, ok := ctx.Value(contextKey{source: src}).(*T)
	if !ok || v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}

func stage[T any](v *Validator, src Source) pipeline.Stage {
	return func(r *http.Request) (*http.Request, error) {
		parsed := new(T)

		if err := decode(r, src, parsed); err != nil {
			return nil, err
		}

		if n, ok := any(parsed).(Normalizer); ok {
			n.Normalize()
		}

		if err := v.Struct(parsed); err != nil {
			return nil, err
		}

		ctx := context.WithValue(r.Context(), contextKey{source: src}, parsed)
		out := r.Clone(ctx)
		if err := replace(out, src, parsed); err != nil {
			return nil, apperr.Server("Failed to process request", err)
		}
		return out, nil
	}
}

// decode reads the selected source into dst.
func decode(r *http.Request, src Source, dst any) error {
	switch src {
	case SourceBody:
		if r.Body == nil {
			return apperr.Validation("", map[string]string{"body": "Request body is required"})
		}
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return decodeError(err)
		}
		return nil
	case SourceQuery:
		return decodeStrings(flatten(r.URL.Query()), dst)
	case SourceParams:
		return decodeStrings(routeParams(r), dst)
	default:
		return apperr.Server("", fmt.Errorf("unknown validation source %q", src))
	}
}

// decodeError maps body decode failures into the taxonomy.
func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "Request body too large",
			Code:    apperr.CodeInvalidInput,
			Status:  http.StatusRequestEntityTooLarge,
			Err:     err,
		}
	}
	return apperr.Normalize(err, false)
}

// decodeStrings maps string key/values onto dst through its JSON tags.
func decodeStrings(values map[string]string, dst any) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return apperr.Server("", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return decodeError(err)
	}
	return nil
}

// replace writes the parsed value back into the selected source.
func replace(r *http.Request, src Source, parsed any) error {
	switch src {
	case SourceBody:
		raw, err := json.Marshal(parsed)
		if err != nil {
			return err
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}
	case SourceQuery:
		values, err := toStrings(parsed)
		if err != nil {
			return err
		}
		q := url.Values{}
		for k, v := range values {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	case SourceParams:
		values, err := toStrings(parsed)
		if err != nil {
			return err
		}
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return nil
		}
		for i, key := range rctx.URLParams.Keys {
			if v, ok := values[key]; ok && i < len(rctx.URLParams.Values) {
				rctx.URLParams.Values[i] = v
			}
		}
	}
	return nil
}

// toStrings renders a parsed schema as string key/values, dropping empty fields.
func toStrings(parsed any) (map[string]string, error) {
	raw, err := json.Marshal(parsed)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// flatten keeps the first value of each query key.
func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func routeParams(r *http.Request) map[string]string {
	out := map[string]string{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return out
	}
	for i, key := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) {
			out[key] = rctx.URLParams.Values[i]
		}
	}
	return out
}

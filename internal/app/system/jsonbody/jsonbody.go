// Package jsonbody decodes request bodies into explicit request records.
// Unknown fields, malformed JSON, trailing data and oversized bodies are
// all reported as apierr validation errors.
package jsonbody

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/collabify/internal/app/system/apierr"
	"github.com/dalemusser/collabify/internal/app/system/limits"
)

// Decode reads r's body into v with limits.MaxJSONBody.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	return DecodeMax(w, r, v, limits.MaxJSONBody)
}

// DecodeMax reads r's body into v, rejecting bodies over max bytes.
func DecodeMax(w http.ResponseWriter, r *http.Request, v any, max int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apierr.Validation("Request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, max))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return translate(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apierr.Validation("Request body must contain a single JSON object")
	}
	return nil
}

func translate(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return apierr.Validation("Request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apierr.Validation("Malformed JSON body")
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return apierr.Validation(fmt.Sprintf("Invalid value for field %q", typeErr.Field))
		}
		return apierr.Validation("Invalid JSON value")
	case errors.As(err, &maxErr):
		return apierr.Validation("Request body too large")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return apierr.Validation("Unknown field " + field)
	default:
		return apierr.Validation("Invalid JSON body")
	}
}

// Package middleware validates JSON request bodies at HTTP boundaries.
package middleware

import (
	"context"
	"errors"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

type ctxKeyValue struct{}

// ContextWithValue attaches a parsed body to the context.
func ContextWithValue(ctx context.Context, v value.Value) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, v)
}

// ValueFromContext retrieves the body attached by ContextWithValue.
func ValueFromContext(ctx context.Context) (value.Value, bool) {
	v, ok := ctx.Value(ctxKeyValue{}).(value.Value)
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and bodies are capped at 1 MiB.
func DefaultParseOpt() jspec.ParseOpt {
	return jspec.ParseOpt{
		Strictness: jspec.Strictness{OnDuplicateKey: jspec.Error},
		MaxBytes:   1 << 20,
	}
}

// Issue is one violation in an error response.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Offset  *int64 `json:"offset,omitempty"`
}

// ErrorPayload shapes validation errors for JSON responses.
func ErrorPayload(err error) map[string]any {
	var issues []Issue
	var pe *jspec.ParseError
	if errors.As(err, &pe) {
		is := issue(pe.ValidationError)
		if pe.Offset >= 0 {
			off := pe.Offset
			is.Offset = &off
		}
		issues = append(issues, is)
	} else if es, ok := jspec.AsErrors(err); ok {
		for _, e := range es {
			issues = append(issues, issue(e))
		}
	}
	return map[string]any{"issues": issues}
}

func issue(e jspec.ValidationError) Issue {
	return Issue{Path: e.Path.String(), Code: string(e.Code), Message: e.Message}
}

// Validate parses each request body against s and passes the typed value to
// next through the request context. Bodies that fail are answered with 400
// and an ErrorPayload; the last opts entry wins, defaulting to
// DefaultParseOpt.
func Validate(s spec.Spec, next http.Handler, opts ...jspec.ParseOpt) http.Handler {
	opt := DefaultParseOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := jspec.ParseReader(r.Context(), s, r.Body, opt)
		if err != nil {
			if _, ok := jspec.AsErrors(err); !ok {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusBadRequest, ErrorPayload(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	b, err := gojson.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

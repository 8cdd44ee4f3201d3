package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	gojson "github.com/goccy/go-json"

	"github.com/reoring/jspec/middleware"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

func handler() http.Handler {
	s := spec.Object(spec.Req("name", spec.String()), spec.Opt("n", spec.Int32()))
	return middleware.Validate(s, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := middleware.ValueFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		b, _ := value.Encode(v)
		_, _ = w.Write(b)
	}))
}

func serve(body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestValidate_PassesTypedValue(t *testing.T) {
	rec := serve(`{"name":"a","n":1}`)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"name":"a","n":1}` {
		t.Fatalf("got %d %s", rec.Code, rec.Body)
	}
}

func TestValidate_RejectsWithIssues(t *testing.T) {
	type issue struct {
		Path   string `json:"path"`
		Code   string `json:"code"`
		Offset *int64 `json:"offset"`
	}
	cases := []struct {
		body string
		want issue
	}{
		{`{"name":1}`, issue{"/name", "string_expected", ptr(8)}},
		{`{"name":"a","name":"b"}`, issue{"/name", "duplicate_key", ptr(12)}},
		{`{"n":1}`, issue{"/name", "required", ptr(0)}},
	}
	for _, tc := range cases {
		rec := serve(tc.body)
		if rec.Code != http.StatusBadRequest || rec.Header().Get("Content-Type") != "application/json" {
			t.Fatalf("%s: got %d", tc.body, rec.Code)
		}
		var got struct{ Issues []issue }
		if err := gojson.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: decode: %v", tc.body, err)
		}
		if diff := cmp.Diff([]issue{tc.want}, got.Issues); diff != "" {
			t.Fatalf("%s: issues (-want +got):\n%s", tc.body, diff)
		}
	}
}

func ptr(n int64) *int64 { return &n }

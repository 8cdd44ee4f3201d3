package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/middleware"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// ValidateJSON parses the request body against s, stores the value in the
// request context, or returns 400 with an issues payload when it fails.
func ValidateJSON(s spec.Spec, opts ...jspec.ParseOpt) echo.MiddlewareFunc {
	opt := middleware.DefaultParseOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := jspec.ParseReader(c.Request().Context(), s, c.Request().Body, opt)
			if err != nil {
				if _, ok := jspec.AsErrors(err); ok {
					return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
				}
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithValue(c.Request().Context(), v)))
			return next(c)
		}
	}
}

// GetValue fetches the parsed body from echo.Context.
func GetValue(c echo.Context) (value.Value, bool) {
	return middleware.ValueFromContext(c.Request().Context())
}

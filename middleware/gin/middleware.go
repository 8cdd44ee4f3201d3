package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/middleware"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// ValidateJSON parses the request body against s, stores the value in the
// request context and answers 400 with an issues payload on failure. The
// last opts entry wins; without one middleware.DefaultParseOpt applies.
func ValidateJSON(s spec.Spec, opts ...jspec.ParseOpt) gin.HandlerFunc {
	opt := middleware.DefaultParseOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return func(c *gin.Context) {
		v, err := jspec.ParseReader(c.Request.Context(), s, c.Request.Body, opt)
		if err != nil {
			if _, ok := jspec.AsErrors(err); ok {
				c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(err))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), v))
		c.Next()
	}
}

// GetValue fetches the parsed body from gin.Context.
func GetValue(c *gin.Context) (value.Value, bool) {
	return middleware.ValueFromContext(c.Request.Context())
}

package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/pkg"
)

// Recovery returns a gin middleware that recovers from panics, logs the panic
// value with its stack trace and responds with the standard error envelope:
//
//	{"code": 500, "message": "internal server error", "data": null}
//
// Nothing is written when the handler already started the response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				c.Abort()
				if c.Writer.Written() {
					return
				}
				pkg.Error(c, domain.NewAppError(domain.CodeInternal, "internal server error", nil))
			}
		}()
		c.Next()
	}
}

package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/kontakt/internal/pkg"
)

// abortWithStatus ends the request with an empty error envelope for code.
func abortWithStatus(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, pkg.Response{Code: code, Message: statusMessage(code)})
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) { abortWithStatus(c, http.StatusNotFound) }
}

func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) { abortWithStatus(c, http.StatusMethodNotAllowed) }
}

// statusMessage is the lower-case reason phrase for code, or "error" for
// codes net/http does not know.
func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return strings.ToLower(text)
	}
	return "error"
}

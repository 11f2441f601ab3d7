package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/types"
)

// Recovery turns handler panics into an enveloped 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Printf("[Recovery] panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		abortWithError(c, http.StatusInternalServerError, types.CodeInternal, "Internal Server Error")
	})
}

// NotFound answers unknown routes with an enveloped 404
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, types.CodeNotFound, "route not found")
	}
}

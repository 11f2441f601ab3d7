package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/types"
)

// abortWithError stops the chain with an enveloped error body
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": types.NewErrorBody(status, code, message)})
}

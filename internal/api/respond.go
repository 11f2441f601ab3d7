package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/types"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, types.Envelope{Error: types.NewErrorBody(status, code, message)})
}

// respondError maps service errors onto enveloped HTTP errors
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, types.CodeInvalidLogin, "Invalid login credentials")
	case errors.Is(err, service.ErrInvalidToken):
		writeError(c, http.StatusUnauthorized, types.CodeUnauthorized, "Token is invalid or has expired")
	case errors.Is(err, service.ErrAccountExists):
		writeError(c, http.StatusConflict, types.CodeConflict, err.Error())
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmptyRecipe),
		errors.Is(err, service.ErrInvalidTheme),
		errors.Is(err, service.ErrNoImages),
		errors.Is(err, service.ErrEmptyText):
		writeError(c, http.StatusBadRequest, types.CodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(c, http.StatusNotFound, types.CodeNotFound, "User not found")
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(c, http.StatusNotFound, types.CodeNotFound, "Recipe not found")
	case errors.Is(err, service.ErrExtractionDisabled),
		errors.Is(err, service.ErrStorageNotAvailable):
		writeError(c, http.StatusServiceUnavailable, types.CodeUnavailable, err.Error())
	default:
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, types.CodeInternal, "Internal server error")
	}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, types.CodeInvalidRequest, "Invalid request body")
		return false
	}
	return true
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, types.CodeUnauthorized, "User not authenticated")
	}
	return userID, ok
}

// recipeID parses the :id path parameter; malformed ids cannot exist, so they are 404
func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, types.CodeNotFound, "Recipe not found")
		return uuid.Nil, false
	}
	return id, true
}

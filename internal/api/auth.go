package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/token", h.Token)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/recover", h.Recover)
		auth.POST("/verify", h.Verify)
		auth.GET("/user", requireAuth, h.GetUser)
		auth.PUT("/user", requireAuth, h.UpdateUser)
		auth.POST("/logout", requireAuth, h.Logout)
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req types.Credentials
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SessionResponse{Session: session})
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req types.Credentials
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SessionResponse{Session: session})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req types.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SessionResponse{Session: session})
}

// Recover always succeeds for well-formed requests
func (h *AuthHandler) Recover(c *gin.Context) {
	var req types.RecoverRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.RequestRecovery(c.Request.Context(), req.Email, req.RedirectTo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Envelope{})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req types.VerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.VerifyRecovery(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SessionResponse{Session: session})
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.UserResponse{User: user})
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.UpdatePassword(c.Request.Context(), userID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.UserResponse{User: &session.User, Session: session})
}

// Logout is stateless; the client drops its tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID, ok := middleware.UserID(c); ok {
		log.Printf("[AuthHandler] User %s signed out", userID)
	}
	c.JSON(http.StatusOK, types.Envelope{})
}

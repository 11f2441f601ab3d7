package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/types"
)

// AccountHandler serves usage totals and beta sign-ups
type AccountHandler struct {
	usageService service.IUsageService
	betaService  service.IBetaService
}

func NewAccountHandler(usageService service.IUsageService, betaService service.IBetaService) *AccountHandler {
	return &AccountHandler{usageService: usageService, betaService: betaService}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.GET("/usage", requireAuth, h.GetUsage)
	router.POST("/beta-users", h.RequestBetaAccess)
}

func (h *AccountHandler) GetUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	usage, err := h.usageService.GetUsage(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.UsageResponse{Usage: *usage})
}

func (h *AccountHandler) RequestBetaAccess(c *gin.Context) {
	var req types.BetaAccessRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.betaService.RequestAccess(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.Envelope{})
}

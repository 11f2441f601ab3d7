package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/types"
)

const maxAvatarBody = types.MaxImageBytes + 1<<20

type PreferencesHandler struct {
	preferencesService service.IPreferencesService
	avatarService      service.IAvatarService
}

func NewPreferencesHandler(preferencesService service.IPreferencesService, avatarService service.IAvatarService) *PreferencesHandler {
	return &PreferencesHandler{
		preferencesService: preferencesService,
		avatarService:      avatarService,
	}
}

func (h *PreferencesHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	prefs := router.Group("/preferences", requireAuth)
	{
		prefs.GET("", h.GetPreferences)
		prefs.PATCH("", h.UpdatePreferences)
		prefs.POST("/avatar", h.UploadAvatar)
	}
}

// GetPreferences answers with a null payload when nothing was ever saved
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	prefs, err := h.preferencesService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PreferencesResponse{Preferences: prefs})
}

func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.UpdatePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs, err := h.preferencesService.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PreferencesResponse{Preferences: prefs})
}

func (h *PreferencesHandler) UploadAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBody)
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, types.CodeInvalidRequest, "Please choose an image to upload")
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if err := types.CheckImage(contentType, fh.Size); err != nil {
		writeError(c, http.StatusBadRequest, types.CodeInvalidFile, err.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, types.CodeInvalidFile, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	url, err := h.avatarService.ReplaceAvatar(c.Request.Context(), userID, fh.Filename, contentType, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{AvatarURL: url})
}

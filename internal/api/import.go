package api

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/types"
)

const (
	// maxImportBody caps a whole multipart import request
	maxImportBody   = 100 << 20
	multipartMemory = 32 << 20
)

type ImportHandler struct {
	extraction service.IExtractionService
	limiter    *middleware.RateLimiter
}

func NewImportHandler(extraction service.IExtractionService, limiter *middleware.RateLimiter) *ImportHandler {
	return &ImportHandler{extraction: extraction, limiter: limiter}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	imports := router.Group("/recipes", requireAuth, h.limiter.RateLimitMiddleware())
	{
		imports.POST("/import-image", h.ImportFromImages)
		imports.POST("/import-text", h.ImportFromText)
	}
}

func (h *ImportHandler) ImportFromImages(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBody)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, types.CodeInvalidFile, types.ErrImageTooLarge.Error())
			return
		}
		writeError(c, http.StatusBadRequest, types.CodeInvalidRequest, "Expected a multipart form")
		return
	}

	headers := form.File["files[]"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		writeError(c, http.StatusBadRequest, types.CodeInvalidRequest, "Please select at least one image")
		return
	}

	images := make([]service.ImageInput, 0, len(headers))
	for _, fh := range headers {
		contentType := fh.Header.Get("Content-Type")
		if err := types.CheckImage(contentType, fh.Size); err != nil {
			writeError(c, http.StatusBadRequest, types.CodeInvalidFile, err.Error())
			return
		}
		data, err := readPart(fh)
		if err != nil {
			writeError(c, http.StatusBadRequest, types.CodeInvalidFile, "Failed to read uploaded file")
			return
		}
		images = append(images, service.ImageInput{ContentType: contentType, Data: data})
	}

	markdown, err := h.extraction.ExtractFromImages(c.Request.Context(), userID, images)
	if err != nil {
		h.extractionFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ImportRecipeResponse{RecipeMarkdown: markdown})
}

func (h *ImportHandler) ImportFromText(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.ImportTextRequest
	if !bindJSON(c, &req) {
		return
	}

	markdown, err := h.extraction.ExtractFromText(c.Request.Context(), userID, req.Text)
	if err != nil {
		h.extractionFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ImportRecipeResponse{RecipeMarkdown: markdown})
}

func (h *ImportHandler) extractionFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExtractionDisabled),
		errors.Is(err, service.ErrNoImages),
		errors.Is(err, service.ErrEmptyText):
		respondError(c, err)
	case errors.Is(err, service.ErrEmptyExtraction):
		writeError(c, http.StatusBadGateway, types.CodeExtraction, "No recipe could be extracted")
	default:
		log.Printf("[ImportHandler] extraction failed: %v", err)
		writeError(c, http.StatusBadGateway, types.CodeExtraction, "Failed to extract recipe")
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, types.MaxImageBytes+1))
}

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"videoninja/models"
	"videoninja/services"
	"videoninja/utils"
)

// LibraryHandler exposes the media library, recording and authorization
type LibraryHandler struct {
	library    *services.LibraryService
	authorizer *services.GrantAuthorizer
	uploadDir  string
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library *services.LibraryService, authorizer *services.GrantAuthorizer, uploadDir string) *LibraryHandler {
	return &LibraryHandler{library: library, authorizer: authorizer, uploadDir: uploadDir}
}

// List handles GET /api/library?kind=
func (h *LibraryHandler) List(c *gin.Context) {
	kind := models.MediaKinds.Parse(c.DefaultQuery("kind", models.MediaKindVideo.Value))
	if kind == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown kind"})
		return
	}

	items, err := h.library.List(c.Request.Context(), *kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(items, func(it models.LibraryItem, _ int) models.LibraryItemResponse {
		return models.LibraryItemResponse{
			ID:        it.ID,
			Kind:      it.MediaKind(),
			Title:     it.Title,
			Duration:  it.Duration().Seconds(),
			Size:      it.Size,
			Origin:    it.Origin,
			PlayURL:   fmt.Sprintf("/api/library/%s/play", it.ID),
			CreatedAt: it.CreatedAt,
		}
	}))
}

// Play handles GET /api/library/:id/play
func (h *LibraryHandler) Play(c *gin.Context) {
	item, err := h.library.Playable(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if strings.EqualFold(filepath.Ext(item.Path), ".mov") {
		c.Header("Content-Type", "video/quicktime")
	}
	c.File(item.Path)
}

// Record handles POST /api/record
func (h *LibraryHandler) Record(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !utils.VideoExtensions.Contains(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported file type %q", ext)})
		return
	}

	// Keep the original name so the library title matches the capture.
	upload := filepath.Join(h.uploadDir, uuid.New().String(), filepath.Base(file.Filename))
	if err := utils.EnsureDirs(filepath.Dir(upload)); err != nil {
		respondError(c, err)
		return
	}
	defer os.RemoveAll(filepath.Dir(upload))

	if err := c.SaveUploadedFile(file, upload); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.library.Record(c.Request.Context(), Subject(c), upload)
	switch {
	case err != nil && result.Dialog != nil:
		c.JSON(merry.HTTPCode(err), models.RecordResponse{Dialog: result.Dialog})
	case err != nil:
		respondError(c, err)
	case !result.Attempted:
		respondError(c, services.ErrNotAuthorized)
	default:
		c.JSON(http.StatusCreated, models.RecordResponse{ItemID: result.Item.ID, Dialog: result.Dialog})
	}
}

// GetAuthorization handles GET /api/authorization
func (h *LibraryHandler) GetAuthorization(c *gin.Context) {
	subject := Subject(c)
	status, err := h.authorizer.Status(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthorizationResponse{Subject: subject, Status: status})
}

// SetAuthorization handles PUT /api/authorization
func (h *LibraryHandler) SetAuthorization(c *gin.Context) {
	var req models.AuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Status == models.AuthorizationNotDetermined || !models.AuthorizationStatuses.Contains(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be authorized or denied"})
		return
	}

	subject := Subject(c)
	if err := h.authorizer.Set(c.Request.Context(), subject, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthorizationResponse{Subject: subject, Status: req.Status})
}

package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/ansel1/merry/v2"
	"github.com/gin-gonic/gin"

	"videoninja/models"
	"videoninja/services"
	"videoninja/utils"
)

// VideoHandler handles merge sessions and export jobs
type VideoHandler struct {
	sessions *services.SessionStore
	picker   *services.PickerService
	merger   *services.MergeService
	exporter *services.ExportService
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(sessions *services.SessionStore, picker *services.PickerService, merger *services.MergeService, exporter *services.ExportService) *VideoHandler {
	return &VideoHandler{
		sessions: sessions,
		picker:   picker,
		merger:   merger,
		exporter: exporter,
	}
}

// session resolves the :id session of the caller. Sessions of other
// subjects are reported as missing.
func (h *VideoHandler) session(c *gin.Context) (*services.Session, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err == nil && !session.OwnedBy(Subject(c)) {
		err = services.ErrSessionNotFound
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}

// job resolves the :job_id job of the caller.
func (h *VideoHandler) job(c *gin.Context) (*models.ExportJob, bool) {
	job, exists := h.exporter.Get(c.Param("job_id"))
	if !exists || job.Owner() != Subject(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return nil, false
	}
	return job, true
}

// CreateSession handles POST /api/sessions
func (h *VideoHandler) CreateSession(c *gin.Context) {
	session := h.sessions.Create(Subject(c))
	log.Printf("[Session %s] created for %s", session.ID, session.Owner)
	c.JSON(http.StatusCreated, models.CreateSessionResponse{SessionID: session.ID})
}

// GetSession handles GET /api/sessions/:id
func (h *VideoHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	first, second, audio := session.Assets()
	c.JSON(http.StatusOK, models.SessionResponse{
		SessionID:   session.ID,
		FirstVideo:  first,
		SecondVideo: second,
		Audio:       audio,
		Merging:     session.Merging(),
	})
}

// Pick handles POST /api/sessions/:id/pick
func (h *VideoHandler) Pick(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !models.Slots.Contains(req.Slot) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot is required"})
		return
	}
	if !models.Sources.Contains(req.Source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source is required"})
		return
	}
	if !req.Cancel && req.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID is required unless cancelling"})
		return
	}

	ctx := c.Request.Context()
	results := h.picker.Pick(ctx, services.PickParams{Source: req.Source, Slot: req.Slot}, services.ItemChooser{ID: req.ItemID, Cancel: req.Cancel})
	r := services.ApplyPick(ctx, session, results)
	if r.Err != nil && r.Dialog != nil {
		c.JSON(merry.HTTPCode(r.Err), models.PickResponse{Status: "unavailable", Dialog: r.Dialog, Error: r.Err.Error()})
		return
	}
	if r.Err != nil {
		respondError(c, r.Err)
		return
	}

	resp := models.PickResponse{Asset: r.Asset, Dialog: r.Dialog}
	switch {
	case r.Cancelled:
		resp.Status = "cancelled"
	case r.Ignored:
		resp.Status = "ignored"
	case r.Asset == nil:
		resp.Status = "unavailable"
	default:
		resp.Status = "loaded"
	}
	c.JSON(http.StatusOK, resp)
}

// Merge handles POST /api/sessions/:id/merge
func (h *VideoHandler) Merge(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	// The export outlives the request.
	ctx := context.WithoutCancel(c.Request.Context())
	job, outcomes, err := h.merger.Merge(ctx, session, Subject(c))
	if err != nil {
		respondError(c, err)
		return
	}

	go func() {
		for o := range outcomes {
			if o.Save != nil && o.Save.Dialog != nil {
				log.Printf("[Job %s] %s: %s", o.Job.ID, o.Save.Dialog.Title, o.Save.Dialog.Message)
			} else {
				log.Printf("[Job %s] finished as %s", o.Job.ID, o.Job.Status)
			}
		}
	}()

	c.JSON(http.StatusAccepted, models.MergeResponse{JobID: job.ID, Status: job.Status()})
}

// GetStatus handles GET /api/jobs/:job_id
func (h *VideoHandler) GetStatus(c *gin.Context) {
	job, ok := h.job(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, statusResponse(job.Snapshot()))
}

// Cancel handles DELETE /api/jobs/:job_id
func (h *VideoHandler) Cancel(c *gin.Context) {
	job, ok := h.job(c)
	if !ok {
		return
	}
	if job.Status().IsTerminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "Job already finished"})
		return
	}

	job.Cancel()
	<-job.Done()
	c.JSON(http.StatusOK, statusResponse(job.Snapshot()))
}

// Download handles GET /api/jobs/:job_id/download
func (h *VideoHandler) Download(c *gin.Context) {
	job, ok := h.job(c)
	if !ok {
		return
	}

	if job.Status() != models.ExportStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job not completed yet"})
		return
	}

	if !utils.FileExists(job.OutputPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}

	c.Header("Content-Type", "video/quicktime")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(job.OutputPath)))
	c.File(job.OutputPath)
}

func statusResponse(snap models.JobSnapshot) models.StatusResponse {
	resp := models.StatusResponse{
		Status:    snap.Status,
		Progress:  snap.Progress,
		Dialog:    snap.Dialog,
		UpdatedAt: snap.UpdatedAt,
	}

	if snap.Status == models.ExportStatusCompleted && snap.OutputPath != "" {
		videoURL := fmt.Sprintf("/api/jobs/%s/download", snap.ID)
		resp.VideoURL = &videoURL
	}

	if snap.Err != nil {
		errMsg := snap.Err.Error()
		resp.Error = &errMsg
	}

	return resp
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"videoninja/models"
	"videoninja/utils"
)

// Renderer runs an encoder command line.
type Renderer interface {
	Render(ctx context.Context, args []string, total time.Duration, progress utils.ProgressCallback) error
}

// FFmpegRenderer renders with the ffmpeg binary.
type FFmpegRenderer struct {
	Path string
}

func (r FFmpegRenderer) Render(ctx context.Context, args []string, total time.Duration, progress utils.ProgressCallback) error {
	return utils.RunFFmpegCommand(ctx, r.Path, args, total, progress)
}

// ExportService renders compositions to files in the background
type ExportService struct {
	renderer Renderer
	options  utils.RenderOptions
	inspect  func(path string) (*utils.ContainerInfo, error)

	jobs    map[string]*models.ExportJob
	jobsMux sync.RWMutex
}

// NewExportService creates a new export service
func NewExportService(renderer Renderer, options utils.RenderOptions) *ExportService {
	return &ExportService{
		renderer: renderer,
		options:  options,
		inspect:  utils.InspectContainer,
		jobs:     make(map[string]*models.ExportJob),
	}
}

// ExportAsync starts rendering comp to outputPath and returns the running
// job. When outputPath is already taken the job writes to a numbered
// sibling instead; job.OutputPath holds the file actually written.
// Cancelling ctx or calling job.Cancel stops the render; the job then ends
// as cancelled.
func (es *ExportService) ExportAsync(ctx context.Context, comp *models.Composition, vc models.VideoComposition, outputPath string) (*models.ExportJob, error) {
	if _, err := utils.BuildMergeArgs(comp, vc, es.options, outputPath); err != nil {
		return nil, fmt.Errorf("failed to plan export: %w", err)
	}
	if err := utils.EnsureDirs(filepath.Dir(outputPath)); err != nil {
		return nil, err
	}
	claimed, err := utils.ClaimPath(outputPath)
	if err != nil {
		return nil, err
	}
	args, err := utils.BuildMergeArgs(comp, vc, es.options, claimed)
	if err != nil {
		_ = os.Remove(claimed)
		return nil, fmt.Errorf("failed to plan export: %w", err)
	}
	outputPath = claimed

	job := models.NewExportJob(uuid.New().String(), outputPath)
	renderCtx, cancel := context.WithCancel(ctx)
	job.SetCancelFunc(cancel)

	es.jobsMux.Lock()
	es.jobs[job.ID] = job
	es.jobsMux.Unlock()

	log.Printf("[Job %s] Exporting %s (%s)", job.ID, filepath.Base(outputPath), utils.FormatTimestamp(vc.TimeRange.Duration))

	go func() {
		defer cancel()
		err := es.renderer.Render(renderCtx, args, vc.TimeRange.Duration, func(p utils.Progress) {
			job.SetProgress(p.Percent)
		})
		es.finish(renderCtx, job, err)
	}()

	return job, nil
}

// finish settles job. Anything short of a completed export removes the
// claimed file, which only this job ever writes.
func (es *ExportService) finish(ctx context.Context, job *models.ExportJob, err error) {
	switch {
	case err == nil && !rendered(job.OutputPath):
		err = fmt.Errorf("renderer produced no file at %s", job.OutputPath)
		log.Printf("[Job %s] FAILED: %v", job.ID, err)
		_ = os.Remove(job.OutputPath)
		job.Finish(models.ExportStatusFailed, err)
	case err == nil:
		es.verify(job)
		log.Printf("[Job %s] Export completed", job.ID)
		job.Finish(models.ExportStatusCompleted, nil)
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		log.Printf("[Job %s] Export cancelled", job.ID)
		_ = os.Remove(job.OutputPath)
		job.Finish(models.ExportStatusCancelled, context.Canceled)
	default:
		log.Printf("[Job %s] FAILED: %v", job.ID, err)
		_ = os.Remove(job.OutputPath)
		job.Finish(models.ExportStatusFailed, err)
	}
}

// rendered reports whether path holds more than the empty placeholder.
func rendered(path string) bool {
	size, err := utils.GetFileSize(path)
	return err == nil && size > 0
}

// verify logs container problems of a finished export without failing it.
func (es *ExportService) verify(job *models.ExportJob) {
	if es.inspect == nil {
		return
	}
	info, err := es.inspect(job.OutputPath)
	if err != nil {
		log.Printf("[Job %s] could not inspect output: %v", job.ID, err)
		return
	}
	if !info.FastStart {
		log.Printf("[Job %s] output is not optimized for streaming (moov after mdat)", job.ID)
	}
	log.Printf("[Job %s] output %q brand, %d tracks, %s", job.ID, info.MajorBrand, info.Tracks, utils.FormatTimestamp(info.Duration))
}

// Get returns a job by ID
func (es *ExportService) Get(id string) (*models.ExportJob, bool) {
	es.jobsMux.RLock()
	defer es.jobsMux.RUnlock()
	job, ok := es.jobs[id]
	return job, ok
}

// Forget drops finished jobs older than maxAge from the registry.
func (es *ExportService) Forget(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	es.jobsMux.Lock()
	defer es.jobsMux.Unlock()
	n := 0
	for id, job := range es.jobs {
		snap := job.Snapshot()
		if snap.Status.IsTerminal() && snap.UpdatedAt.Before(cutoff) {
			delete(es.jobs, id)
			n++
		}
	}
	return n
}

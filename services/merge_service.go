package services

import (
	"context"
	"log"
	"time"

	"videoninja/models"
	"videoninja/utils"
)

// Sink persists a finished export.
type Sink interface {
	Save(ctx context.Context, subject, path string) (SaveResult, error)
}

// MergeOutcome is delivered once the export and the save that follows it
// are both settled.
type MergeOutcome struct {
	Job  models.JobSnapshot
	Save *SaveResult
	Err  error
}

// MergeService runs compose, instructions, export and save for a session
type MergeService struct {
	composer     *ComposerService
	instructions *InstructionBuilder
	exporter     *ExportService
	sink         Sink
	documentsDir string
	now          func() time.Time
}

// NewMergeService creates a new merge service
func NewMergeService(composer *ComposerService, instructions *InstructionBuilder, exporter *ExportService, sink Sink, documentsDir string) *MergeService {
	return &MergeService{
		composer:     composer,
		instructions: instructions,
		exporter:     exporter,
		sink:         sink,
		documentsDir: documentsDir,
		now:          time.Now,
	}
}

// Merge starts exporting the session's slots on behalf of subject, who owns
// the resulting job. It fails without creating a job when subject does not
// own the session, a video slot is empty, a video has no video track or
// another merge of the session is still running. The returned channel
// yields one outcome and is closed.
func (ms *MergeService) Merge(ctx context.Context, session *Session, subject string) (*models.ExportJob, <-chan MergeOutcome, error) {
	if !session.OwnedBy(subject) {
		return nil, nil, ErrSessionNotFound
	}
	if !session.tryBeginMerge() {
		return nil, nil, ErrMergeInProgress
	}

	first, second, audio := session.Assets()
	comp, err := ms.composer.Compose(first, second, audio)
	if err != nil {
		session.endMerge()
		return nil, nil, err
	}
	for _, w := range comp.Warnings {
		log.Printf("[Session %s] %s", session.ID, w)
	}

	videoTracks := comp.TracksOf(models.MediaKindVideo)
	vc := ms.instructions.Build(videoTracks[0], first, videoTracks[1], second)

	outputPath := utils.MergeOutputPath(ms.documentsDir, ms.now())
	job, err := ms.exporter.ExportAsync(ctx, comp, vc, outputPath)
	if err != nil {
		session.endMerge()
		return nil, nil, err
	}
	job.SetOwner(subject)
	log.Printf("[Session %s] merge started as job %s", session.ID, job.ID)

	outcome := make(chan MergeOutcome, 1)
	go func() {
		defer close(outcome)
		settle := func(o MergeOutcome) {
			session.endMerge()
			outcome <- o
		}

		<-job.Done()
		result := MergeOutcome{Job: job.Snapshot()}
		if result.Job.Status != models.ExportStatusCompleted || result.Job.OutputPath == "" {
			settle(result)
			return
		}

		save, err := ms.sink.Save(context.WithoutCancel(ctx), subject, result.Job.OutputPath)
		if err != nil {
			log.Printf("[Job %s] save failed: %v", job.ID, err)
		}
		job.SetDialog(save.Dialog)
		result.Job = job.Snapshot()
		result.Save = &save
		result.Err = err
		settle(result)
	}()

	return job, outcome, nil
}

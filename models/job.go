package models

import (
	"sync"
	"time"
)

// Dialog is the title/message pair shown to the user after an action.
type Dialog struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ExportJob tracks one in-flight render. It moves from running to exactly
// one terminal status; Done is closed when that happens.
type ExportJob struct {
	ID         string
	OutputPath string
	CreatedAt  time.Time

	mu        sync.RWMutex
	owner     string
	status    ExportStatus
	progress  float64
	err       error
	dialog    *Dialog
	updatedAt time.Time
	cancel    func()
	done      chan struct{}
}

// NewExportJob creates a job in the running state.
func NewExportJob(id, outputPath string) *ExportJob {
	now := time.Now()
	return &ExportJob{
		ID:         id,
		OutputPath: outputPath,
		CreatedAt:  now,
		status:     ExportStatusRunning,
		updatedAt:  now,
		done:       make(chan struct{}),
	}
}

func (j *ExportJob) Status() ExportStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

func (j *ExportJob) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

// Done is closed once the job reaches a terminal status.
func (j *ExportJob) Done() <-chan struct{} {
	return j.done
}

// Finish moves the job to a terminal status. It returns false if status is
// not terminal or the job already finished.
func (j *ExportJob) Finish(status ExportStatus, err error) bool {
	if !status.IsTerminal() {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return false
	}
	j.status = status
	j.err = err
	if status == ExportStatusCompleted {
		j.progress = 100
	}
	j.updatedAt = time.Now()
	close(j.done)
	return true
}

// SetProgress records render progress in percent. Ignored once finished.
func (j *ExportJob) SetProgress(percent float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return
	}
	j.progress = min(max(percent, 0), 100)
	j.updatedAt = time.Now()
}

func (j *ExportJob) SetCancelFunc(cancel func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = cancel
}

// Cancel asks the running render to stop. The job becomes cancelled once the
// render returns.
func (j *ExportJob) Cancel() {
	j.mu.RLock()
	cancel := j.cancel
	j.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// SetOwner records the subject the job belongs to.
func (j *ExportJob) SetOwner(subject string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.owner = subject
}

// Owner returns the subject the job belongs to, empty until one is set.
func (j *ExportJob) Owner() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.owner
}

// SetDialog attaches the outcome shown after the export was handled.
func (j *ExportJob) SetDialog(d *Dialog) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.dialog = d
	j.updatedAt = time.Now()
}

// JobSnapshot is a consistent copy of the job state.
type JobSnapshot struct {
	ID         string
	OutputPath string
	Owner      string
	Status     ExportStatus
	Progress   float64
	Err        error
	Dialog     *Dialog
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (j *ExportJob) Snapshot() JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return JobSnapshot{
		ID:         j.ID,
		OutputPath: j.OutputPath,
		Owner:      j.owner,
		Status:     j.status,
		Progress:   j.progress,
		Err:        j.err,
		Dialog:     j.dialog,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.updatedAt,
	}
}

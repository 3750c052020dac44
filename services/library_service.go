package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"videoninja/models"
	"videoninja/utils"
)

// SaveResult reports what happened to a save request. Attempted is false
// when authorization was not granted; no dialog is shown in that case.
type SaveResult struct {
	Attempted     bool
	Saved         bool
	Authorization models.AuthorizationStatus
	Item          *models.LibraryItem
	Dialog        *models.Dialog
}

// LibraryService is the media library: files under a directory, catalogued
// in the database.
type LibraryService struct {
	db         *gorm.DB
	dir        string
	authorizer Authorizer
	prober     Prober
}

// NewLibraryService creates a new library service
func NewLibraryService(db *gorm.DB, dir string, authorizer Authorizer, prober Prober) *LibraryService {
	return &LibraryService{db: db, dir: dir, authorizer: authorizer, prober: prober}
}

// Dir is where library files are stored.
func (ls *LibraryService) Dir() string {
	return ls.dir
}

// Save stores a finished movie in the library if subject is authorized,
// asking for authorization first when needed.
func (ls *LibraryService) Save(ctx context.Context, subject, path string) (SaveResult, error) {
	result, ok, err := ls.authorize(ctx, subject)
	if !ok {
		return result, err
	}

	item, err := ls.store(ctx, path, models.MediaKindVideo, models.OriginMerged)
	result.Attempted = true
	result.Saved = err == nil
	result.Item = item
	if err != nil {
		result.Dialog = &models.Dialog{Title: "Error", Message: "Failed to save video"}
		return result, err
	}
	result.Dialog = &models.Dialog{Title: "Success", Message: "Video saved"}
	return result, nil
}

// Record stores a captured movie after checking it can be played back from
// the library.
func (ls *LibraryService) Record(ctx context.Context, subject, path string) (SaveResult, error) {
	failed := &models.Dialog{Title: "Error", Message: "Video failed to save"}
	defer ls.forget(path)

	asset, err := ls.prober.Load(ctx, path)
	if err != nil {
		return SaveResult{Attempted: true, Dialog: failed}, fmt.Errorf("%w: %v", ErrIncompatibleVideo, err)
	}
	if len(asset.VideoTracks()) == 0 {
		return SaveResult{Attempted: true, Dialog: failed}, ErrIncompatibleVideo
	}

	result, ok, err := ls.authorize(ctx, subject)
	if !ok {
		return result, err
	}

	item, err := ls.store(ctx, path, models.MediaKindVideo, models.OriginRecorded)
	result.Attempted = true
	result.Saved = err == nil
	result.Item = item
	if err != nil {
		result.Dialog = failed
		return result, err
	}
	result.Dialog = &models.Dialog{Title: "Success", Message: "Video was saved"}
	return result, nil
}

// Import adds a video or audio file to the library. The extension decides
// the kind and the file must carry a track of that kind.
func (ls *LibraryService) Import(ctx context.Context, subject, path string) (SaveResult, error) {
	failed := &models.Dialog{Title: "Error", Message: "Import failed"}
	defer ls.forget(path)

	kind, ok := kindOf(path)
	if !ok {
		return SaveResult{Attempted: true, Dialog: failed}, fmt.Errorf("%w: %q", ErrUnsupportedMedia, filepath.Ext(path))
	}

	asset, err := ls.prober.Load(ctx, path)
	if err != nil {
		return SaveResult{Attempted: true, Dialog: failed}, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}
	switch {
	case kind == models.MediaKindVideo && len(asset.VideoTracks()) == 0:
		return SaveResult{Attempted: true, Dialog: failed}, ErrNoVideoTrack
	case kind == models.MediaKindAudio && len(asset.AudioTracks()) == 0:
		return SaveResult{Attempted: true, Dialog: failed}, ErrNoAudioTrack
	}

	result, ok, err := ls.authorize(ctx, subject)
	if !ok {
		return result, err
	}

	item, err := ls.store(ctx, path, kind, models.OriginImported)
	result.Attempted = true
	result.Saved = err == nil
	result.Item = item
	if err != nil {
		result.Dialog = failed
		return result, err
	}
	result.Dialog = &models.Dialog{Title: "Success", Message: "Media imported"}
	return result, nil
}

func kindOf(path string) (models.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case utils.VideoExtensions.Contains(ext):
		return models.MediaKindVideo, true
	case utils.AudioExtensions.Contains(ext):
		return models.MediaKindAudio, true
	}
	return models.MediaKind{}, false
}

// forget drops a cached probe of a source file, which may be replaced or
// removed once it is copied into the library.
func (ls *LibraryService) forget(path string) {
	if f, ok := ls.prober.(Forgetter); ok {
		f.Forget(path)
	}
}

func (ls *LibraryService) authorize(ctx context.Context, subject string) (SaveResult, bool, error) {
	status, err := ls.authorizer.Status(ctx, subject)
	if err != nil {
		return SaveResult{Authorization: status}, false, err
	}
	if status != models.AuthorizationAuthorized {
		status, err = ls.authorizer.Request(ctx, subject)
		if err != nil {
			return SaveResult{Authorization: status}, false, err
		}
	}
	if status != models.AuthorizationAuthorized {
		log.Printf("[Library] %s not authorized (%s), not saving", subject, status.Value)
		return SaveResult{Authorization: status}, false, nil
	}
	return SaveResult{Authorization: status}, true, nil
}

func (ls *LibraryService) store(ctx context.Context, path string, kind models.MediaKind, origin string) (*models.LibraryItem, error) {
	id := uuid.New().String()
	dst := filepath.Join(ls.dir, id+strings.ToLower(filepath.Ext(path)))
	if err := utils.CopyFile(path, dst); err != nil {
		return nil, fmt.Errorf("failed to copy into library: %w", err)
	}

	size, _ := utils.GetFileSize(dst)
	item := &models.LibraryItem{
		ID:        id,
		Kind:      kind.Value,
		Title:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:      dst,
		Size:      size,
		Origin:    origin,
		CreatedAt: time.Now(),
	}
	if asset, err := ls.prober.Load(ctx, dst); err == nil {
		item.DurationMs = asset.Duration.Milliseconds()
	} else {
		log.Printf("[Library] could not probe %s: %v", dst, err)
	}

	if err := ls.db.WithContext(ctx).Create(item).Error; err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("failed to catalogue %s: %w", item.Title, err)
	}

	log.Printf("[Library] saved %q as %s", item.Title, item.ID)
	return item, nil
}

// List returns library items of a kind, newest first.
func (ls *LibraryService) List(ctx context.Context, kind models.MediaKind) ([]models.LibraryItem, error) {
	var items []models.LibraryItem
	err := ls.db.WithContext(ctx).
		Where("kind = ?", kind.Value).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	return items, nil
}

// Get returns a library item by ID
func (ls *LibraryService) Get(ctx context.Context, id string) (*models.LibraryItem, error) {
	var item models.LibraryItem
	err := ls.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Playable resolves a library video to a file for playback.
func (ls *LibraryService) Playable(ctx context.Context, id string) (*models.LibraryItem, error) {
	item, err := ls.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.MediaKind() != models.MediaKindVideo || !utils.FileExists(item.Path) {
		return nil, ErrItemNotFound
	}
	return item, nil
}

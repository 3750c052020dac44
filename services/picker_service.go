package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"videoninja/models"
	"videoninja/utils"
)

// MediaSource lists the items a picker can offer.
type MediaSource interface {
	Items(ctx context.Context) ([]models.MediaItem, error)
}

// Chooser stands in for the picker UI. It returns the chosen item, or false
// when the user cancelled.
type Chooser interface {
	Choose(ctx context.Context, items []models.MediaItem) (models.MediaItem, bool, error)
}

// DirSource offers the media files of a directory.
type DirSource struct {
	Dir  string
	Kind models.MediaKind
	Exts mapset.Set[string]
}

func (d DirSource) Items(_ context.Context) ([]models.MediaItem, error) {
	if info, err := os.Stat(d.Dir); err != nil || !info.IsDir() {
		return nil, ErrSourceUnavailable
	}
	files, err := utils.ListMediaFiles(d.Dir, d.Exts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.Dir, err)
	}
	return lo.Map(files, func(path string, _ int) models.MediaItem {
		name := filepath.Base(path)
		return models.MediaItem{
			ID:    name,
			Title: strings.TrimSuffix(name, filepath.Ext(name)),
			Path:  path,
			Kind:  d.Kind,
		}
	}), nil
}

// LibraryLister is the part of the library the saved album source reads.
type LibraryLister interface {
	List(ctx context.Context, kind models.MediaKind) ([]models.LibraryItem, error)
}

// LibrarySource offers items already saved to the library.
type LibrarySource struct {
	Library LibraryLister
	Kind    models.MediaKind
}

func (l LibrarySource) Items(ctx context.Context) ([]models.MediaItem, error) {
	items, err := l.Library.List(ctx, l.Kind)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(it models.LibraryItem, _ int) models.MediaItem {
		return models.MediaItem{ID: it.ID, Title: it.Title, Path: it.Path, Kind: it.MediaKind()}
	}), nil
}

// PickParams says where to look and which slot the result fills.
type PickParams struct {
	Source models.Source
	Slot   models.Slot
}

// PickResult is the single value delivered for a pick. At most one of
// Cancelled, Ignored and Err is set; otherwise Asset holds the loaded item.
// Dialog may accompany Err when the user should be told why nothing loaded.
type PickResult struct {
	Slot      models.Slot
	Asset     *models.AssetRef
	Dialog    *models.Dialog
	Cancelled bool
	Ignored   bool
	Err       error
}

// PickerService presents a source to a chooser and loads the chosen item.
type PickerService struct {
	sources map[models.Source]MediaSource
	prober  Prober
}

// NewPickerService creates a new picker service
func NewPickerService(prober Prober, sources map[models.Source]MediaSource) *PickerService {
	return &PickerService{sources: sources, prober: prober}
}

// Pick runs the pick asynchronously. The returned channel yields exactly one
// result and is then closed. Cancelling ctx cancels a pick still waiting on
// the chooser.
func (ps *PickerService) Pick(ctx context.Context, params PickParams, chooser Chooser) <-chan PickResult {
	out := make(chan PickResult, 1)
	go func() {
		defer close(out)
		out <- ps.pick(ctx, params, chooser)
	}()
	return out
}

func (ps *PickerService) pick(ctx context.Context, params PickParams, chooser Chooser) PickResult {
	result := PickResult{Slot: params.Slot}

	source, ok := ps.sources[params.Source]
	if !ok {
		return unavailable(result, fmt.Errorf("%w: %s", ErrSourceUnavailable, params.Source.Value))
	}

	items, err := source.Items(ctx)
	if errors.Is(err, ErrSourceUnavailable) {
		return unavailable(result, err)
	}
	if err != nil {
		result.Err = err
		return result
	}

	item, chosen, err := chooser.Choose(ctx, items)
	if err != nil {
		result.Err = err
		return result
	}
	if !chosen || ctx.Err() != nil {
		result.Cancelled = true
		return result
	}

	expected := params.Slot.Kind()
	if item.Kind != expected {
		log.Printf("[Picker] ignoring %s item %q for %s slot", item.Kind.Value, item.ID, params.Slot.Value)
		result.Ignored = true
		return result
	}

	asset, err := ps.prober.Load(ctx, item.Path)
	if err != nil {
		if params.Slot == models.SlotAudio {
			log.Printf("[Picker] audio item %q not available: %v", item.ID, err)
			result.Dialog = &models.Dialog{Title: "Asset Not Available", Message: "Audio Not Loaded"}
			return result
		}
		result.Err = err
		return result
	}
	if expected == models.MediaKindVideo && len(asset.VideoTracks()) == 0 {
		log.Printf("[Picker] ignoring %q for %s slot: no video track", item.ID, params.Slot.Value)
		result.Ignored = true
		return result
	}

	result.Asset = asset
	result.Dialog = loadedDialog(params.Slot)
	return result
}

func unavailable(result PickResult, err error) PickResult {
	log.Printf("[Picker] source not available: %v", err)
	result.Err = err
	result.Dialog = &models.Dialog{Title: "Not Available", Message: "No Saved Album found"}
	return result
}

func loadedDialog(slot models.Slot) *models.Dialog {
	switch slot {
	case models.SlotFirstVideo:
		return &models.Dialog{Title: "Asset Loaded", Message: "Video one loaded"}
	case models.SlotSecondVideo:
		return &models.Dialog{Title: "Asset Loaded", Message: "Video two loaded"}
	default:
		return &models.Dialog{Title: "Asset Loaded", Message: "Audio Loaded"}
	}
}

// ItemChooser chooses the item with a fixed ID, or cancels when Cancel is set.
type ItemChooser struct {
	ID     string
	Cancel bool
}

func (c ItemChooser) Choose(_ context.Context, items []models.MediaItem) (models.MediaItem, bool, error) {
	if c.Cancel {
		return models.MediaItem{}, false, nil
	}
	item, ok := lo.Find(items, func(it models.MediaItem) bool {
		return it.ID == c.ID || it.Path == c.ID
	})
	if !ok {
		return models.MediaItem{}, false, fmt.Errorf("%w: %s", ErrItemNotFound, c.ID)
	}
	return item, true, nil
}

// ApplyPick waits for a pick and stores a loaded asset in the session.
func ApplyPick(ctx context.Context, session *Session, results <-chan PickResult) PickResult {
	select {
	case <-ctx.Done():
		return PickResult{Cancelled: true}
	case r, ok := <-results:
		if !ok {
			return PickResult{Cancelled: true}
		}
		if r.Asset != nil {
			session.Assign(r.Slot, r.Asset)
		} else if r.Slot == models.SlotAudio && r.Dialog != nil {
			session.Assign(r.Slot, nil)
		}
		return r
	}
}

package services

import (
	"fmt"
	"log"
	"time"

	"videoninja/models"
)

// ComposerService places assets on a timeline
type ComposerService struct{}

// NewComposerService creates a new composer service
func NewComposerService() *ComposerService {
	return &ComposerService{}
}

// Compose builds the merge timeline: first video at zero, second video
// right after it, and the optional audio across the combined duration.
// A missing video track aborts; a missing audio track only drops the audio.
func (cs *ComposerService) Compose(first, second, audio *models.AssetRef) (*models.Composition, error) {
	if first == nil || second == nil {
		return nil, ErrMissingAsset
	}

	comp := &models.Composition{}

	firstSegment, err := segmentOf(first, models.MediaKindVideo, 0, first.Duration)
	if err != nil {
		log.Printf("Failed to load first track: %v", err)
		return nil, fmt.Errorf("first video: %w", err)
	}
	firstTrack := comp.AddTrack(models.MediaKindVideo)
	firstTrack.Segments = append(firstTrack.Segments, firstSegment)

	secondSegment, err := segmentOf(second, models.MediaKindVideo, first.Duration, second.Duration)
	if err != nil {
		log.Printf("Failed to load second track: %v", err)
		return nil, fmt.Errorf("second video: %w", err)
	}
	secondTrack := comp.AddTrack(models.MediaKindVideo)
	secondTrack.Segments = append(secondTrack.Segments, secondSegment)

	if audio != nil {
		audioSegment, err := segmentOf(audio, models.MediaKindAudio, 0, first.Duration+second.Duration)
		if err != nil {
			log.Printf("Failed to load audio track: %v", err)
			comp.Warnings = append(comp.Warnings, fmt.Sprintf("audio skipped: %v", err))
		} else {
			audioTrack := comp.AddTrack(models.MediaKindAudio)
			audioTrack.Segments = append(audioTrack.Segments, audioSegment)
		}
	}

	return comp, nil
}

// segmentOf copies [0, duration) of the asset's first sub-track of kind to
// offset at. The range is not clamped to the source length.
func segmentOf(asset *models.AssetRef, kind models.MediaKind, at, duration time.Duration) (models.TrackSegment, error) {
	if len(asset.TracksOf(kind)) == 0 {
		if kind == models.MediaKindAudio {
			return models.TrackSegment{}, fmt.Errorf("%s: %w", asset.Path, ErrNoAudioTrack)
		}
		return models.TrackSegment{}, fmt.Errorf("%s: %w", asset.Path, ErrNoVideoTrack)
	}
	if duration <= 0 {
		return models.TrackSegment{}, fmt.Errorf("%s: empty duration", asset.Path)
	}
	return models.TrackSegment{
		Source:      asset,
		SourceTrack: 0,
		SourceStart: 0,
		At:          at,
		Duration:    duration,
	}, nil
}

package models

import (
	"time"

	"github.com/samber/lo"
)

// TrackInfo describes one elementary stream inside a media file.
type TrackInfo struct {
	Index    int           `json:"index"`
	Kind     MediaKind     `json:"kind"`
	Codec    string        `json:"codec"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Duration time.Duration `json:"duration"`
}

// AssetRef is a loaded media item. It is never mutated after loading;
// picking a new item replaces it.
type AssetRef struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	Kind     MediaKind     `json:"kind"`
	Duration time.Duration `json:"duration"`
	Tracks   []TrackInfo   `json:"tracks"`
}

// TracksOf returns the sub-tracks of the given kind in file order.
func (a *AssetRef) TracksOf(kind MediaKind) []TrackInfo {
	if a == nil {
		return nil
	}
	return lo.Filter(a.Tracks, func(t TrackInfo, _ int) bool {
		return t.Kind == kind
	})
}

func (a *AssetRef) VideoTracks() []TrackInfo {
	return a.TracksOf(MediaKindVideo)
}

func (a *AssetRef) AudioTracks() []TrackInfo {
	return a.TracksOf(MediaKindAudio)
}

// MediaItem is what a picker source lists before anything is loaded.
type MediaItem struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Path  string    `json:"path"`
	Kind  MediaKind `json:"kind"`
}

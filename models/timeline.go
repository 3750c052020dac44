package models

import (
	"sort"
	"time"
)

// TimeRange is a half-open interval [Start, Start+Duration).
type TimeRange struct {
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
}

func (r TimeRange) End() time.Duration {
	return r.Start + r.Duration
}

// TrackSegment copies Duration of SourceTrack, starting at SourceStart,
// into the owning track at At.
type TrackSegment struct {
	Source      *AssetRef     `json:"-"`
	SourceTrack int           `json:"source_track"`
	SourceStart time.Duration `json:"source_start"`
	At          time.Duration `json:"at"`
	Duration    time.Duration `json:"duration"`
}

func (s TrackSegment) Range() TimeRange {
	return TimeRange{Start: s.At, Duration: s.Duration}
}

// CompositionTrack is one track of the timeline.
type CompositionTrack struct {
	ID       int            `json:"id"`
	Type     MediaKind      `json:"type"`
	Segments []TrackSegment `json:"segments"`
}

// Composition is the mutable timeline built for a single merge.
type Composition struct {
	Tracks   []*CompositionTrack `json:"tracks"`
	Warnings []string            `json:"warnings,omitempty"`
}

// AddTrack appends an empty track and returns it. Track IDs start at 1.
func (c *Composition) AddTrack(kind MediaKind) *CompositionTrack {
	track := &CompositionTrack{ID: len(c.Tracks) + 1, Type: kind}
	c.Tracks = append(c.Tracks, track)
	return track
}

// TracksOf returns the tracks of a kind in insertion order.
func (c *Composition) TracksOf(kind MediaKind) []*CompositionTrack {
	var out []*CompositionTrack
	for _, t := range c.Tracks {
		if t.Type == kind {
			out = append(out, t)
		}
	}
	return out
}

// Duration is the end of the latest video segment. Audio never extends
// the timeline.
func (c *Composition) Duration() time.Duration {
	var end time.Duration
	for _, t := range c.TracksOf(MediaKindVideo) {
		for _, s := range t.Segments {
			if s.Range().End() > end {
				end = s.Range().End()
			}
		}
	}
	return end
}

// OpacityKeyframe sets a layer's opacity from At onwards.
type OpacityKeyframe struct {
	At      time.Duration `json:"at"`
	Opacity float64       `json:"opacity"`
}

// LayerInstruction controls the visibility of one video track.
type LayerInstruction struct {
	TrackID   int               `json:"track_id"`
	Keyframes []OpacityKeyframe `json:"keyframes,omitempty"`
}

// SetOpacity adds a keyframe, keeping keyframes ordered by time.
func (l *LayerInstruction) SetOpacity(opacity float64, at time.Duration) {
	l.Keyframes = append(l.Keyframes, OpacityKeyframe{At: at, Opacity: opacity})
	sort.SliceStable(l.Keyframes, func(i, j int) bool {
		return l.Keyframes[i].At < l.Keyframes[j].At
	})
}

// OpacityAt evaluates the step function defined by the keyframes. A layer
// without keyframes is fully opaque.
func (l LayerInstruction) OpacityAt(t time.Duration) float64 {
	opacity := 1.0
	for _, k := range l.Keyframes {
		if k.At > t {
			break
		}
		opacity = k.Opacity
	}
	return opacity
}

// VisibleRanges returns the sub-ranges of within where the layer has a
// non-zero opacity.
func (l LayerInstruction) VisibleRanges(within TimeRange) []TimeRange {
	var ranges []TimeRange
	cursor := within.Start
	visible := l.OpacityAt(cursor) > 0
	flush := func(until time.Duration) {
		if visible && until > cursor {
			ranges = append(ranges, TimeRange{Start: cursor, Duration: until - cursor})
		}
	}
	for _, k := range l.Keyframes {
		if k.At <= within.Start || k.At >= within.End() {
			continue
		}
		now := k.Opacity > 0
		if now == visible {
			continue
		}
		flush(k.At)
		cursor = k.At
		visible = now
	}
	flush(within.End())
	return ranges
}

// RenderSize is the output frame size in pixels.
type RenderSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// VideoComposition tells the renderer how to draw the video tracks.
type VideoComposition struct {
	TimeRange    TimeRange          `json:"time_range"`
	Instructions []LayerInstruction `json:"instructions"`
	FrameRate    int                `json:"frame_rate"`
	RenderSize   RenderSize         `json:"render_size"`
}

// Instruction returns the layer instruction for a track, if any.
func (v VideoComposition) Instruction(trackID int) (LayerInstruction, bool) {
	for _, in := range v.Instructions {
		if in.TrackID == trackID {
			return in, true
		}
	}
	return LayerInstruction{}, false
}

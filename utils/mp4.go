package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/abema/go-mp4"

	"videoninja/models"
)

// ContainerInfo summarises an ISO BMFF / QuickTime file.
type ContainerInfo struct {
	MajorBrand string
	FastStart  bool
	Duration   time.Duration
	Tracks     int
}

// InspectContainer reads the box structure of an MP4 or QuickTime movie
// without decoding media.
func InspectContainer(path string) (*ContainerInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := mp4.Probe(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read boxes of %s: %w", path, err)
	}

	out := &ContainerInfo{
		MajorBrand: string(info.MajorBrand[:]),
		FastStart:  info.FastStart,
		Tracks:     len(info.Tracks),
	}
	if info.Timescale > 0 {
		out.Duration = scaled(info.Duration, info.Timescale)
	}
	return out, nil
}

// ProbeContainer builds an asset reference from box metadata only. It is a
// fallback for when ffprobe is missing: only AVC video and AAC audio tracks are
// recognised.
func ProbeContainer(id, path string) (*models.AssetRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := mp4.Probe(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read boxes of %s: %w", path, err)
	}

	asset := &models.AssetRef{ID: id, Path: path}
	if info.Timescale > 0 {
		asset.Duration = scaled(info.Duration, info.Timescale)
	}

	for i, t := range info.Tracks {
		track := models.TrackInfo{Index: i}
		if t.Timescale > 0 {
			track.Duration = scaled(t.Duration, t.Timescale)
		}
		switch t.Codec {
		case mp4.CodecAVC1:
			track.Kind = models.MediaKindVideo
			track.Codec = "h264"
			if t.AVC != nil {
				track.Width = int(t.AVC.Width)
				track.Height = int(t.AVC.Height)
			}
		case mp4.CodecMP4A:
			track.Kind = models.MediaKindAudio
			track.Codec = "aac"
		default:
			continue
		}
		asset.Tracks = append(asset.Tracks, track)
	}

	if len(asset.VideoTracks()) > 0 {
		asset.Kind = models.MediaKindVideo
	} else {
		asset.Kind = models.MediaKindAudio
	}
	return asset, nil
}

func scaled(value uint64, timescale uint32) time.Duration {
	return time.Duration(float64(value) / float64(timescale) * float64(time.Second))
}

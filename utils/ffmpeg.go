package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"videoninja/models"
)

// Progress is the render state reported by ffmpeg's -progress output.
type Progress struct {
	Percent        float64 `json:"percent"`
	CurrentSeconds float64 `json:"currentSeconds"`
	TotalSeconds   float64 `json:"totalSeconds"`
	Speed          string  `json:"speed"`
	Done           bool    `json:"done"`
}

type ProgressCallback func(Progress)

// RunFFmpegCommand executes an FFmpeg command. When args request
// "-progress pipe:1", progress blocks are parsed from stdout and reported to cb.
func RunFFmpegCommand(ctx context.Context, ffmpegPath string, args []string, total time.Duration, cb ProgressCallback) error {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start: %w", err)
	}

	parse := ProgressParser(total, cb)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		parse(scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg error: %w, stderr: %s", err, lastLines(stderr.String(), 20))
	}

	return nil
}

// ProgressParser returns a line handler for ffmpeg key=value progress output.
// cb is called once per "progress=" line.
func ProgressParser(total time.Duration, cb ProgressCallback) func(string) {
	progress := Progress{TotalSeconds: total.Seconds()}

	return func(line string) {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			return
		}

		switch key {
		case "out_time_us", "out_time_ms":
			// out_time_ms is in microseconds as well; "N/A" keeps the last position
			us, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return
			}
			progress.CurrentSeconds = us / 1e6
			if progress.TotalSeconds > 0 && us > 0 {
				progress.Percent = min(progress.CurrentSeconds/progress.TotalSeconds*100, 100)
			}
		case "speed":
			progress.Speed = value
		case "progress":
			if value == "end" {
				progress.Percent = 100
				progress.Done = true
			}
			if cb != nil {
				cb(progress)
			}
		}
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// FFProbeStream is the subset of ffprobe's stream entry the service reads.
type FFProbeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
	NbFrames  string `json:"nb_frames"`
	Tags      struct {
		Duration string `json:"DURATION"`
	} `json:"tags"`
	Disposition struct {
		AttachedPic int `json:"attached_pic"`
	} `json:"disposition"`
}

type FFProbeResult struct {
	Streams []FFProbeStream `json:"streams"`
	Format  struct {
		Filename   string `json:"filename"`
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
}

// ProbeFile runs ffprobe on path and decodes its JSON output.
func ProbeFile(ctx context.Context, ffprobePath, path string) (*FFProbeResult, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %w, stderr: %s", err, stderr.String())
	}

	var result FFProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	return &result, nil
}

// ProbeResultToAsset converts ffprobe output into an asset reference. Cover
// art streams are not counted as video tracks.
func ProbeResultToAsset(id, path string, result *FFProbeResult) *models.AssetRef {
	asset := &models.AssetRef{
		ID:       id,
		Path:     path,
		Duration: ParseSeconds(result.Format.Duration),
	}

	for _, s := range result.Streams {
		var kind models.MediaKind
		switch {
		case s.CodecType == "video" && s.Disposition.AttachedPic == 0:
			kind = models.MediaKindVideo
		case s.CodecType == "audio":
			kind = models.MediaKindAudio
		default:
			continue
		}

		duration := ParseSeconds(s.Duration)
		if duration == 0 && s.Tags.Duration != "" {
			duration = ParseClock(s.Tags.Duration)
		}
		if duration == 0 {
			duration = asset.Duration
		}

		asset.Tracks = append(asset.Tracks, models.TrackInfo{
			Index:    s.Index,
			Kind:     kind,
			Codec:    s.CodecName,
			Width:    s.Width,
			Height:   s.Height,
			Duration: duration,
		})
	}

	if asset.Duration == 0 && len(asset.Tracks) > 0 {
		asset.Duration = lo.MaxBy(asset.Tracks, func(a, b models.TrackInfo) bool {
			return a.Duration > b.Duration
		}).Duration
	}

	if len(asset.VideoTracks()) > 0 {
		asset.Kind = models.MediaKindVideo
	} else {
		asset.Kind = models.MediaKindAudio
	}

	return asset
}

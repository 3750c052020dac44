package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"videoninja/models"
)

// RenderOptions are the encoder settings of an export preset.
type RenderOptions struct {
	VideoCodec   string
	VideoPreset  string
	VideoCRF     int
	AudioCodec   string
	AudioBitrate string
}

// HighestQuality is the preset used for merges.
func HighestQuality(preset string, crf int, audioBitrate string) RenderOptions {
	return RenderOptions{
		VideoCodec:   "libx264",
		VideoPreset:  preset,
		VideoCRF:     crf,
		AudioCodec:   "aac",
		AudioBitrate: audioBitrate,
	}
}

// BuildMergeArgs translates a composition into ffmpeg arguments writing a
// fast-start QuickTime movie to outputPath.
//
// Every video segment is normalised to the render size and frame rate, shifted
// to its insertion time and overlaid on a black canvas spanning the main time
// range. A layer is only drawn while its instruction keeps it visible. Audio
// segments are trimmed to their requested range and padded with silence when
// the source is shorter.
func BuildMergeArgs(comp *models.Composition, vc models.VideoComposition, opts RenderOptions, outputPath string) ([]string, error) {
	if comp == nil {
		return nil, errors.New("no composition")
	}
	total := vc.TimeRange.Duration
	if total <= 0 {
		return nil, errors.New("empty time range")
	}
	size := vc.RenderSize
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d", size.Width, size.Height)
	}
	fps := vc.FrameRate
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", fps)
	}

	videoTracks := comp.TracksOf(models.MediaKindVideo)
	if len(videoTracks) == 0 {
		return nil, errors.New("composition has no video track")
	}

	args := []string{"-hide_banner", "-nostats", "-progress", "pipe:1", "-y"}

	inputs := map[string]int{}
	inputIndex := func(path string) int {
		if i, ok := inputs[path]; ok {
			return i
		}
		i := len(inputs)
		inputs[path] = i
		args = append(args, "-i", path)
		return i
	}

	var filters []string
	filters = append(filters, fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s[base]",
		size.Width, size.Height, fps, FormatSeconds(total)))
	last := "[base]"

	for _, track := range videoTracks {
		instruction, _ := vc.Instruction(track.ID)
		for k, seg := range track.Segments {
			if seg.Source == nil {
				return nil, fmt.Errorf("track %d segment %d has no source", track.ID, k)
			}
			ranges := instruction.VisibleRanges(seg.Range())
			if len(ranges) == 0 {
				continue
			}

			in := inputIndex(seg.Source.Path)
			label := fmt.Sprintf("[v%d_%d]", track.ID, k)
			filters = append(filters, fmt.Sprintf(
				"[%d:v:%d]trim=start=%s:duration=%s,setpts=PTS-STARTPTS+%s/TB,"+
					"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,"+
					"setsar=1,fps=%d,format=yuv420p%s",
				in, seg.SourceTrack, FormatSeconds(seg.SourceStart), FormatSeconds(seg.Duration), FormatSeconds(seg.At),
				size.Width, size.Height, size.Width, size.Height,
				fps, label))

			out := fmt.Sprintf("[ov%d_%d]", track.ID, k)
			filters = append(filters, fmt.Sprintf("%s%soverlay=eof_action=pass:enable='%s'%s",
				last, label, enableExpr(ranges), out))
			last = out
		}
	}
	filters = append(filters, last+"null[vout]")

	var audioLabels []string
	for _, track := range comp.TracksOf(models.MediaKindAudio) {
		for k, seg := range track.Segments {
			if seg.Source == nil {
				return nil, fmt.Errorf("track %d segment %d has no source", track.ID, k)
			}
			in := inputIndex(seg.Source.Path)
			label := fmt.Sprintf("[a%d_%d]", track.ID, k)
			filter := fmt.Sprintf("[%d:a:%d]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS,apad=whole_dur=%s",
				in, seg.SourceTrack, FormatSeconds(seg.SourceStart), FormatSeconds(seg.Duration), FormatSeconds(seg.Duration))
			if seg.At > 0 {
				filter += fmt.Sprintf(",adelay=%d:all=1", seg.At.Milliseconds())
			}
			filters = append(filters, filter+label)
			audioLabels = append(audioLabels, label)
		}
	}

	switch len(audioLabels) {
	case 0:
	case 1:
		filters = append(filters, audioLabels[0]+"anull[aout]")
	default:
		filters = append(filters, fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]",
			strings.Join(audioLabels, ""), len(audioLabels)))
	}

	args = append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "[vout]",
	)
	if len(audioLabels) > 0 {
		args = append(args, "-map", "[aout]")
	}

	args = append(args,
		"-c:v", opts.VideoCodec,
		"-preset", opts.VideoPreset,
		"-crf", strconv.Itoa(opts.VideoCRF),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(fps),
	)
	if len(audioLabels) > 0 {
		args = append(args, "-c:a", opts.AudioCodec, "-b:a", opts.AudioBitrate)
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-t", FormatSeconds(total),
		"-movflags", "+faststart",
		"-f", "mov",
		outputPath,
	)

	return args, nil
}

func enableExpr(ranges []models.TimeRange) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, fmt.Sprintf("gte(t,%s)*lt(t,%s)", FormatSeconds(r.Start), FormatSeconds(r.End())))
	}
	return strings.Join(parts, "+")
}

package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatSeconds formats a duration as decimal seconds for ffmpeg filters (S.mmm)
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(math.Round(d.Seconds()*1000)/1000, 'f', 3, 64)
}

// ParseSeconds parses ffprobe's decimal seconds. Unparseable input yields 0.
func ParseSeconds(s string) time.Duration {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) {
		return 0
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// ParseClock parses HH:MM:SS.fraction as written in Matroska DURATION tags.
func ParseClock(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + ParseSeconds(parts[2])
}

// FormatTimestamp formats a duration as HH:MM:SS.mmm for logs and listings
func FormatTimestamp(d time.Duration) string {
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

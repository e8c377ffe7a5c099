package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ProbeError covers every way a duration probe can fail: bad exit,
// timeout, or unparsable output. Callers treat it as "duration unknown".
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

type Prober struct{}

// Duration asks ffprobe for the container duration in seconds.
func (Prober) Duration(ctx context.Context, path string) (float64, error) {
	stdout, _, err := run(ctx, probeTimeout, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}

	seconds, err := parseDuration(stdout)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}
	return seconds, nil
}

func parseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return 0, fmt.Errorf("empty duration output")
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %f", seconds)
	}
	return seconds, nil
}

package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Thumbnailer struct{}

// Extract seeks to offset seconds and writes a single 640-wide frame to
// dst, replacing anything already there. The frame lands in a temp file
// first so a killed ffmpeg never leaves a truncated thumbnail behind.
// Returns false on any failure; extraction is always best-effort.
func (Thumbnailer) Extract(ctx context.Context, src, dst string, offset float64) bool {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Errorf("create thumbnail dir %s: %v", dir, err)
		return false
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".thumb-%s.jpg", uuid.Must(uuid.NewV7())))
	_, _, err := run(ctx, thumbnailTimeout, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", offset),
		"-i", src,
		"-vframes", "1",
		"-vf", "scale=640:-2",
		"-q:v", "2",
		"-y", tmp)
	if err != nil {
		os.Remove(tmp)
		return false
	}

	if info, err := os.Stat(tmp); err != nil || info.Size() == 0 {
		log.Errorf("thumbnail output missing or empty for %s at offset %.1fs", src, offset)
		os.Remove(tmp)
		return false
	}

	if err := os.Rename(tmp, dst); err != nil {
		log.Errorf("rename thumbnail into place: %v", err)
		os.Remove(tmp)
		return false
	}
	return true
}

// Package hls owns the on-disk layout of rendition output and the
// playlist rewriting the serving layer depends on.
//
// Layout:
//
//	{media_root}/videos/{video_id}/hls/{quality}/index.m3u8
//	{media_root}/videos/{video_id}/hls/{quality}/segment_000.ts ...
//	{media_root}/thumbnails/thumb_{video_id}.jpg
package hls

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const ManifestName = "index.m3u8"

var segmentName = regexp.MustCompile(`^segment_\d{3,}\.ts$`)

// VideoDir is the root of all output for one video.
func VideoDir(mediaRoot string, videoID uint) string {
	return filepath.Join(mediaRoot, "videos", fmt.Sprint(videoID))
}

// Dir is the directory holding one rendition's manifest and segments.
func Dir(mediaRoot string, videoID uint, quality string) string {
	return filepath.Join(VideoDir(mediaRoot, videoID), "hls", quality)
}

func ManifestPath(mediaRoot string, videoID uint, quality string) string {
	return filepath.Join(Dir(mediaRoot, videoID, quality), ManifestName)
}

func ThumbnailPath(mediaRoot string, videoID uint) string {
	return filepath.Join(mediaRoot, "thumbnails", fmt.Sprintf("thumb_%d.jpg", videoID))
}

// Exists reports whether the rendition's manifest is on disk.
func Exists(mediaRoot string, videoID uint, quality string) bool {
	info, err := os.Stat(ManifestPath(mediaRoot, videoID, quality))
	return err == nil && !info.IsDir()
}

// AnyExists reports whether any rendition of the video has a manifest.
func AnyExists(mediaRoot string, videoID uint) bool {
	entries, err := os.ReadDir(filepath.Join(VideoDir(mediaRoot, videoID), "hls"))
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() && Exists(mediaRoot, videoID, entry.Name()) {
			return true
		}
	}
	return false
}

// IsSegmentName reports whether name matches the segment_NNN.ts pattern
// the encoder emits. Anything else is rejected by the serving layer.
func IsSegmentName(name string) bool {
	return segmentName.MatchString(name)
}

package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"streamhub/config"
)

// Mode selects the rendition output shape.
type Mode string

const (
	// SingleFile produces one mp4 at the target path.
	SingleFile Mode = "single_file"
	// HLSSegments produces index.m3u8 plus segment_NNN.ts files in the
	// target directory.
	HLSSegments Mode = "hls_segments"
)

type Encoder struct{}

// EncodeRendition re-encodes src to the named quality profile. In
// HLSSegments mode target is the rendition directory; in SingleFile mode
// it is the output file path. On any failure the partial output is
// removed so a re-run starts clean, and false is returned.
func (Encoder) EncodeRendition(ctx context.Context, src, target, label string, mode Mode) bool {
	profile, ok := config.ProfileFor(label)
	if !ok {
		log.Errorf("unknown quality label %q", label)
		return false
	}

	var expect string
	switch mode {
	case HLSSegments:
		if err := os.MkdirAll(target, 0o755); err != nil {
			log.Errorf("create rendition dir %s: %v", target, err)
			return false
		}
		expect = filepath.Join(target, "index.m3u8")
	case SingleFile:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			log.Errorf("create dir for %s: %v", target, err)
			return false
		}
		expect = target
	default:
		log.Errorf("unknown encode mode %q", mode)
		return false
	}

	args := renditionArgs(profile, src, target, mode)
	_, _, err := run(ctx, encodeTimeout, "ffmpeg", args...)
	if err != nil {
		log.Errorf("encode %s %s failed: %v", label, src, err)
		removeOutput(target, mode)
		return false
	}

	if info, statErr := os.Stat(expect); statErr != nil || info.Size() == 0 {
		log.Errorf("encode %s %s produced no %s", label, src, expect)
		removeOutput(target, mode)
		return false
	}
	return true
}

func renditionArgs(profile config.QualityProfile, src, target string, mode Mode) []string {
	args := []string{
		"-i", src,
		"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
		"-c:v", "libx264",
		"-b:v", profile.VideoBitrate,
		"-preset", "medium",
		"-c:a", "aac",
		"-b:a", profile.AudioBitrate,
	}
	if mode == HLSSegments {
		args = append(args,
			"-f", "hls",
			"-hls_time", fmt.Sprintf("%d", config.SegmentSeconds),
			"-hls_list_size", "0",
			"-hls_playlist_type", "vod",
			"-hls_segment_filename", filepath.Join(target, "segment_%03d.ts"),
			"-y", filepath.Join(target, "index.m3u8"))
	} else {
		args = append(args, "-y", target)
	}
	return args
}

func removeOutput(target string, mode Mode) {
	var err error
	if mode == HLSSegments {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	if err != nil && !os.IsNotExist(err) {
		log.Errorf("cleanup %s: %v", target, err)
	}
}

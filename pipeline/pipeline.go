// Package pipeline sequences one video through probe, thumbnail,
// rendition encodes, and the processed flag. Renditions are independent
// of each other and of the thumbnail, so a failed step is logged and the
// run moves on; only a missing video or source file aborts the job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"streamhub/config"
	"streamhub/ffmpeg"
	"streamhub/hls"
	"streamhub/videos"
)

var log *logrus.Logger

func Init(logger *logrus.Logger) error {
	log = logger.WithFields(logrus.Fields{
		"component": "pipeline",
	}).Logger
	return nil
}

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrNoSourceFile  = errors.New("video has no source file")
)

// FatalError aborts the job. Anything not wrapped in it stays inside the
// pipeline.
type FatalError struct {
	VideoID uint
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("video %d: %v", e.VideoID, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// The external-process steps are consumed through interfaces so tests
// can stand in for ffmpeg/ffprobe.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type Thumbnailer interface {
	Extract(ctx context.Context, src, dst string, offset float64) bool
}

type Encoder interface {
	EncodeRendition(ctx context.Context, src, target, label string, mode ffmpeg.Mode) bool
}

type Orchestrator struct {
	MediaRoot string
	Prober    Prober
	Thumbs    Thumbnailer
	Encoder   Encoder
	Profiles  []config.QualityProfile
}

func New(mediaRoot string) *Orchestrator {
	return &Orchestrator{
		MediaRoot: mediaRoot,
		Prober:    ffmpeg.Prober{},
		Thumbs:    ffmpeg.Thumbnailer{},
		Encoder:   ffmpeg.Encoder{},
		Profiles:  config.Profiles(),
	}
}

// thumbnail seek offsets, tried in order; later attempts seek earlier
// because very short clips may not reach the first offset
var thumbnailOffsets = []float64{2, 1}

// Process runs the whole pipeline for one video. It is idempotent:
// re-running skips renditions that already have a VideoQuality row and
// repeats the cheap steps harmlessly, so re-enqueueing the same video id
// is the retry mechanism.
func (o *Orchestrator) Process(ctx context.Context, videoID uint) error {
	video, err := videos.Get(videoID)
	if err != nil {
		return &FatalError{VideoID: videoID, Err: ErrVideoNotFound}
	}
	if video.SourcePath == "" {
		return &FatalError{VideoID: videoID, Err: ErrNoSourceFile}
	}
	if _, err := os.Stat(video.SourcePath); err != nil {
		return &FatalError{VideoID: videoID, Err: fmt.Errorf("%w: %v", ErrNoSourceFile, err)}
	}

	o.probe(ctx, &video)
	o.thumbnail(ctx, &video)

	for _, profile := range o.Profiles {
		o.rendition(ctx, &video, profile)
	}

	// Processed means "the pipeline has run", deliberately even with zero
	// successful renditions; consumers check VideoQuality rows for
	// availability.
	if err := videos.MarkProcessed(videoID); err != nil {
		log.Errorf("mark video %d processed: %v", videoID, err)
	}
	log.Infof("video %d processed", videoID)
	return nil
}

func (o *Orchestrator) probe(ctx context.Context, video *videos.Video) {
	seconds, err := o.Prober.Duration(ctx, video.SourcePath)
	if err != nil {
		log.Errorf("probe video %d: %v", video.ID, err)
		return
	}
	if err := videos.SetDuration(video.ID, seconds); err != nil {
		log.Errorf("store duration for video %d: %v", video.ID, err)
		return
	}
	video.Duration = seconds
}

func (o *Orchestrator) thumbnail(ctx context.Context, video *videos.Video) {
	if video.ThumbnailPath != "" {
		return
	}
	dst := hls.ThumbnailPath(o.MediaRoot, video.ID)
	for _, offset := range thumbnailOffsets {
		if !o.Thumbs.Extract(ctx, video.SourcePath, dst, offset) {
			log.Warnf("thumbnail for video %d failed at offset %.0fs", video.ID, offset)
			continue
		}
		if err := videos.SetThumbnail(video.ID, dst); err != nil {
			log.Errorf("store thumbnail for video %d: %v", video.ID, err)
		} else {
			video.ThumbnailPath = dst
		}
		return
	}
	log.Warnf("no thumbnail for video %d, serving layer will use the placeholder", video.ID)
}

func (o *Orchestrator) rendition(ctx context.Context, video *videos.Video, profile config.QualityProfile) {
	exists, err := videos.QualityExists(video.ID, profile.Label)
	if err != nil {
		log.Errorf("check %s rendition of video %d: %v", profile.Label, video.ID, err)
		return
	}
	if exists {
		log.Debugf("video %d already has %s, skipping", video.ID, profile.Label)
		return
	}

	dir := hls.Dir(o.MediaRoot, video.ID, profile.Label)
	if !o.Encoder.EncodeRendition(ctx, video.SourcePath, dir, profile.Label, ffmpeg.HLSSegments) {
		log.Errorf("encode %s rendition of video %d failed", profile.Label, video.ID)
		return
	}

	manifest, err := os.ReadFile(hls.ManifestPath(o.MediaRoot, video.ID, profile.Label))
	if err != nil {
		log.Errorf("read %s manifest of video %d: %v", profile.Label, video.ID, err)
		removeDir(dir)
		return
	}
	if err := hls.ValidateManifest(manifest); err != nil {
		log.Errorf("%s manifest of video %d invalid: %v", profile.Label, video.ID, err)
		removeDir(dir)
		return
	}

	size, err := directorySize(dir)
	if err != nil {
		log.Errorf("size %s rendition of video %d: %v", profile.Label, video.ID, err)
	}

	created, err := videos.CreateQuality(&videos.VideoQuality{
		VideoID:  video.ID,
		Quality:  profile.Label,
		FilePath: dir,
		FileSize: size,
		IsReady:  true,
	})
	if err != nil {
		log.Errorf("record %s rendition of video %d: %v", profile.Label, video.ID, err)
		return
	}
	if !created {
		// a concurrent run got there first; its output is equivalent
		log.Infof("%s rendition of video %d already recorded", profile.Label, video.ID)
		return
	}
	log.Infof("created %s rendition of video %d (%d segments, %d bytes)",
		profile.Label, video.ID, hls.CountSegments(manifest), size)
}

func removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Errorln(err)
	}
}

func directorySize(dir string) (int64, error) {
	var size int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"streamhub/config"
	"streamhub/database"
	"streamhub/ffmpeg"
	"streamhub/hls"
	"streamhub/videos"
)

const fakeManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXT-X-PLAYLIST-TYPE:VOD
#EXTINF:10.000000,
segment_000.ts
#EXTINF:6.500000,
segment_001.ts
#EXT-X-ENDLIST
`

type fakeProber struct {
	seconds float64
	err     error
}

func (f fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	return f.seconds, f.err
}

type fakeThumbs struct {
	failures int // attempts that fail before one succeeds; -1 = always fail
	offsets  []float64
}

func (f *fakeThumbs) Extract(ctx context.Context, src, dst string, offset float64) bool {
	f.offsets = append(f.offsets, offset)
	if f.failures < 0 {
		return false
	}
	if f.failures > 0 {
		f.failures--
		return false
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false
	}
	return os.WriteFile(dst, []byte("jpg"), 0o644) == nil
}

type fakeEncoder struct {
	fail  map[string]bool // labels that fail
	calls []string
}

func (f *fakeEncoder) EncodeRendition(ctx context.Context, src, target, label string, mode ffmpeg.Mode) bool {
	f.calls = append(f.calls, label)
	if f.fail[label] {
		return false
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return false
	}
	for i := 0; i < 2; i++ {
		seg := filepath.Join(target, fmt.Sprintf("segment_%03d.ts", i))
		if err := os.WriteFile(seg, []byte("ts-data"), 0o644); err != nil {
			return false
		}
	}
	return os.WriteFile(filepath.Join(target, "index.m3u8"), []byte(fakeManifest), 0o644) == nil
}

type fixture struct {
	db        *gorm.DB
	mediaRoot string
	orch      *Orchestrator
	prober    *fakeProber
	thumbs    *fakeThumbs
	encoder   *fakeEncoder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&videos.Video{}, &videos.VideoQuality{}, &videos.WatchProgress{}))
	require.NoError(t, database.Init(db, logrus.New()))
	require.NoError(t, videos.Init(logrus.New()))
	require.NoError(t, Init(logrus.New()))

	f := &fixture{
		db:        db,
		mediaRoot: t.TempDir(),
		prober:    &fakeProber{seconds: 16.5},
		thumbs:    &fakeThumbs{},
		encoder:   &fakeEncoder{fail: map[string]bool{}},
	}
	f.orch = &Orchestrator{
		MediaRoot: f.mediaRoot,
		Prober:    f.prober,
		Thumbs:    f.thumbs,
		Encoder:   f.encoder,
		Profiles:  config.Profiles(),
	}
	return f
}

func (f *fixture) addVideo(t *testing.T, withSource bool) *videos.Video {
	t.Helper()
	video := &videos.Video{Title: "clip"}
	if withSource {
		src := filepath.Join(f.mediaRoot, "upload.mp4")
		require.NoError(t, os.WriteFile(src, []byte("raw"), 0o644))
		video.SourcePath = src
	}
	require.NoError(t, f.db.Create(video).Error)
	return video
}

func (f *fixture) qualityCount(t *testing.T, videoID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&videos.VideoQuality{}).Where("video_id = ?", videoID).Count(&count).Error)
	return count
}

func TestProcessHappyPath(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
	assert.InDelta(t, 16.5, got.Duration, 1e-9)
	assert.Equal(t, hls.ThumbnailPath(f.mediaRoot, video.ID), got.ThumbnailPath)
	assert.FileExists(t, got.ThumbnailPath)

	assert.EqualValues(t, 3, f.qualityCount(t, video.ID))
	qualities, err := videos.ReadyQualities(video.ID)
	require.NoError(t, err)
	for _, q := range qualities {
		assert.True(t, q.IsReady)
		assert.Positive(t, q.FileSize)
		assert.FileExists(t, filepath.Join(q.FilePath, "index.m3u8"))
	}
	assert.Equal(t, []string{"480p", "720p", "1080p"}, f.encoder.calls, "ascending resolution order")
}

func TestProcessMissingVideoIsFatal(t *testing.T) {
	f := setup(t)

	err := f.orch.Process(context.Background(), 12345)
	require.Error(t, err)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestProcessMissingSourceIsFatal(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	require.NoError(t, os.Remove(video.SourcePath))

	err := f.orch.Process(context.Background(), video.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSourceFile)

	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.False(t, got.IsProcessed, "an aborted job must not mark the video processed")
	assert.Zero(t, f.qualityCount(t, video.ID))
}

func TestProcessEmptySourceIsFatal(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, false)

	err := f.orch.Process(context.Background(), video.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSourceFile)
}

func TestProcessProbeFailureIsNonFatal(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	f.prober.err = errors.New("probe exploded")

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
	assert.Zero(t, got.Duration, "duration stays unknown when the probe fails")
	assert.EqualValues(t, 3, f.qualityCount(t, video.ID))
}

func TestProcessRenditionFailureIsNonFatal(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	f.encoder.fail["1080p"] = true

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
	assert.EqualValues(t, 2, f.qualityCount(t, video.ID))

	qualities, err := videos.ReadyQualities(video.ID)
	require.NoError(t, err)
	labels := []string{}
	for _, q := range qualities {
		labels = append(labels, q.Quality)
	}
	assert.ElementsMatch(t, []string{"480p", "720p"}, labels)
	assert.NoDirExists(t, hls.Dir(f.mediaRoot, video.ID, "1080p"),
		"failed rendition must leave no partial directory")
}

func TestProcessAllRenditionsFailStillProcessed(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	for _, label := range config.QualityLabels() {
		f.encoder.fail[label] = true
	}

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed, "processed means the pipeline ran, not that renditions exist")
	assert.Zero(t, f.qualityCount(t, video.ID))
}

func TestProcessIsIdempotent(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)

	require.NoError(t, f.orch.Process(context.Background(), video.ID))
	firstCalls := len(f.encoder.calls)

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	assert.Equal(t, firstCalls, len(f.encoder.calls),
		"second run must not re-encode completed renditions")
	assert.EqualValues(t, 3, f.qualityCount(t, video.ID))
}

func TestProcessResumesAfterPartialRun(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)

	// first run: 720p times out
	f.encoder.fail["720p"] = true
	require.NoError(t, f.orch.Process(context.Background(), video.ID))
	assert.EqualValues(t, 2, f.qualityCount(t, video.ID))

	// retry: only the missing rendition is attempted
	f.encoder.fail = map[string]bool{}
	f.encoder.calls = nil
	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	assert.Equal(t, []string{"720p"}, f.encoder.calls)
	assert.EqualValues(t, 3, f.qualityCount(t, video.ID))
}

func TestThumbnailOffsetFallback(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	f.thumbs.failures = 1

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	assert.Equal(t, []float64{2, 1}, f.thumbs.offsets)
	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ThumbnailPath)
}

func TestThumbnailFailureIsNonFatal(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	f.thumbs.failures = -1

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	got, err := videos.Get(video.ID)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)
	assert.Empty(t, got.ThumbnailPath)
	assert.Equal(t, []float64{2, 1}, f.thumbs.offsets, "both offsets are tried before giving up")
}

func TestThumbnailSkippedWhenAlreadySet(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)
	require.NoError(t, f.db.Model(video).Update("thumbnail_path", "/static/custom.jpg").Error)

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	assert.Empty(t, f.thumbs.offsets, "an existing thumbnail must not be overwritten")
}

func TestProcessInvalidManifestRemovesOutput(t *testing.T) {
	f := setup(t)
	video := f.addVideo(t, true)

	// encoder that writes a truncated manifest with no ENDLIST
	f.orch.Encoder = brokenManifestEncoder{}

	require.NoError(t, f.orch.Process(context.Background(), video.ID))

	assert.Zero(t, f.qualityCount(t, video.ID))
	for _, label := range config.QualityLabels() {
		assert.NoDirExists(t, hls.Dir(f.mediaRoot, video.ID, label))
	}
}

type brokenManifestEncoder struct{}

func (brokenManifestEncoder) EncodeRendition(ctx context.Context, src, target, label string, mode ffmpeg.Mode) bool {
	if err := os.MkdirAll(target, 0o755); err != nil {
		return false
	}
	return os.WriteFile(filepath.Join(target, "index.m3u8"),
		[]byte("#EXTM3U\n#EXTINF:10.0,\nsegment_000.ts\n"), 0o644) == nil
}

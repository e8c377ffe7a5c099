package videos

import (
	"time"

	"gorm.io/gorm"
)

// Video is one uploaded source file. The upload flow creates the row;
// the pipeline fills in duration, thumbnail, and IsProcessed.
// IsProcessed means "the pipeline has run", not "renditions exist" —
// availability is answered per rendition by VideoQuality rows.
type Video struct {
	gorm.Model
	Title         string
	SourcePath    string
	ThumbnailPath string
	Duration      float64 // seconds, 0 = unknown
	IsProcessed   bool
}

// VideoQuality is one completed rendition. Rows are only created after
// the encode and manifest check fully succeed; there are no placeholder
// rows, and at most one row per (video, quality).
type VideoQuality struct {
	ID        uint   `gorm:"primarykey"`
	VideoID   uint   `gorm:"uniqueIndex:idx_video_quality"`
	Quality   string `gorm:"uniqueIndex:idx_video_quality"`
	FilePath  string // rendition directory (HLS) or file
	FileSize  int64
	IsReady   bool
	CreatedAt time.Time
}

// WatchProgress is one viewer's position in one video, upserted on every
// player heartbeat.
type WatchProgress struct {
	ID             uint    `gorm:"primarykey"`
	UserID         uint    `gorm:"uniqueIndex:idx_user_video"`
	VideoID        uint    `gorm:"uniqueIndex:idx_user_video"`
	ElapsedSeconds float64
	IsCompleted    bool
	LastWatched    time.Time `gorm:"autoUpdateTime"`
}

// ProgressPercentage derives the watched fraction, clamped to 100. It is
// 0 whenever the video duration is unknown.
func (p *WatchProgress) ProgressPercentage(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := p.ElapsedSeconds / duration * 100
	if pct > 100 {
		return 100
	}
	return pct
}

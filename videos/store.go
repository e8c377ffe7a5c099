package videos

import (
	"os"
	"time"

	"gorm.io/gorm/clause"

	"streamhub/database"
	"streamhub/hls"
)

func Get(id uint) (Video, error) {
	db := database.Get()
	var video Video
	err := db.First(&video, "id = ?", id).Error
	return video, err
}

func SetDuration(id uint, seconds float64) error {
	db := database.Get()
	return db.Model(&Video{}).Where("id = ?", id).Update("duration", seconds).Error
}

func SetThumbnail(id uint, path string) error {
	db := database.Get()
	return db.Model(&Video{}).Where("id = ?", id).Update("thumbnail_path", path).Error
}

func MarkProcessed(id uint) error {
	db := database.Get()
	return db.Model(&Video{}).Where("id = ?", id).Update("is_processed", true).Error
}

func QualityExists(videoID uint, quality string) (bool, error) {
	db := database.Get()
	var count int64
	err := db.Model(&VideoQuality{}).
		Where("video_id = ? AND quality = ?", videoID, quality).
		Count(&count).Error
	return count > 0, err
}

// CreateQuality inserts the rendition row, relying on the (video_id,
// quality) unique index to close the race between concurrent workers.
// A conflicting insert is not an error: created=false means another run
// already recorded this rendition.
func CreateQuality(q *VideoQuality) (created bool, err error) {
	db := database.Get()
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}, {Name: "quality"}},
		DoNothing: true,
	}).Create(q)
	return result.RowsAffected > 0, result.Error
}

func ReadyQualities(videoID uint) ([]VideoQuality, error) {
	db := database.Get()
	var qualities []VideoQuality
	err := db.Where("video_id = ? AND is_ready = ?", videoID, true).
		Order("id").Find(&qualities).Error
	return qualities, err
}

// RecordProgress is an atomic upsert keyed on (user_id, video_id): first
// heartbeat creates the row, later ones overwrite position and completion
// and refresh last_watched. Never read-then-write.
func RecordProgress(userID, videoID uint, elapsed float64, completed bool) (WatchProgress, error) {
	db := database.Get()
	now := time.Now()
	progress := WatchProgress{
		UserID:         userID,
		VideoID:        videoID,
		ElapsedSeconds: elapsed,
		IsCompleted:    completed,
		LastWatched:    now,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"elapsed_seconds": elapsed,
			"is_completed":    completed,
			"last_watched":    now,
		}),
	}).Create(&progress).Error
	if err != nil {
		return WatchProgress{}, err
	}

	// reload so the caller sees the surviving row, not the insert attempt
	err = db.Where("user_id = ? AND video_id = ?", userID, videoID).First(&progress).Error
	return progress, err
}

func ProgressForUser(userID uint) ([]WatchProgress, error) {
	db := database.Get()
	var progress []WatchProgress
	err := db.Where("user_id = ?", userID).Order("last_watched DESC").Find(&progress).Error
	return progress, err
}

// Delete removes the video row, its rendition and progress rows, and
// every file the pipeline produced for it.
func Delete(id uint, mediaRoot string) error {
	db := database.Get()

	video, err := Get(id)
	if err != nil {
		return err
	}

	if err := db.Unscoped().Where("video_id = ?", id).Delete(&VideoQuality{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("video_id = ?", id).Delete(&WatchProgress{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Delete(&Video{}, id).Error; err != nil {
		return err
	}

	if err := os.RemoveAll(hls.VideoDir(mediaRoot, id)); err != nil {
		log.Errorf("remove rendition output for video %d: %v", id, err)
	}
	if err := os.Remove(hls.ThumbnailPath(mediaRoot, id)); err != nil && !os.IsNotExist(err) {
		log.Errorf("remove thumbnail for video %d: %v", id, err)
	}
	if video.SourcePath != "" {
		if err := os.Remove(video.SourcePath); err != nil && !os.IsNotExist(err) {
			log.Errorf("remove source for video %d: %v", id, err)
		}
	}
	return nil
}

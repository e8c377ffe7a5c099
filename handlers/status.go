package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sys/unix"

	"streamhub/config"
	"streamhub/database"
	"streamhub/ffmpeg"
	"streamhub/videos"
)

// getFreeSpace returns the free space in bytes for the filesystem containing the given directory
func getFreeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	err := unix.Statfs(dir, &stat)
	if err != nil {
		return 0, fmt.Errorf("error getting filesystem stats: %v", err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// getDirectorySize calculates the total size of a directory in bytes
func getDirectorySize(dir string) (int64, error) {
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
	if err != nil {
		return 0, fmt.Errorf("error walking directory: %v", err)
	}
	return size, nil
}

type videoStatus struct {
	ID                 uint     `json:"id"`
	Title              string   `json:"title"`
	IsProcessed        bool     `json:"is_processed"`
	SourceExists       bool     `json:"source_exists"`
	SourceSize         int64    `json:"source_size"`
	ReadyQualities     []string `json:"ready_qualities"`
	ProcessingAgeHours float64  `json:"processing_age_hours"`
}

// StatusGet reports per-video processing state plus disk usage, for
// operators chasing stuck or zero-rendition videos.
func StatusGet(c echo.Context) error {
	db := database.Get()

	var all []videos.Video
	if err := db.Order("created_at DESC").Find(&all).Error; err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "couldn't load videos")
	}

	processed := 0
	statuses := make([]videoStatus, 0, len(all))
	for _, video := range all {
		s := videoStatus{
			ID:                 video.ID,
			Title:              video.Title,
			IsProcessed:        video.IsProcessed,
			ReadyQualities:     []string{},
			ProcessingAgeHours: time.Since(video.CreatedAt).Hours(),
		}
		if video.IsProcessed {
			processed++
		}
		if video.SourcePath != "" {
			if info, err := os.Stat(video.SourcePath); err == nil {
				s.SourceExists = true
				s.SourceSize = info.Size()
			}
		}
		if qualities, err := videos.ReadyQualities(video.ID); err == nil {
			for _, q := range qualities {
				s.ReadyQualities = append(s.ReadyQualities, q.Quality)
			}
		}
		statuses = append(statuses, s)
	}

	ffmpegVersion, err := ffmpeg.Version(c.Request().Context())
	if err != nil {
		log.Errorln(err)
	}

	free, err := getFreeSpace(config.GetMediaRoot())
	if err != nil {
		log.Errorln(err)
	}
	used, err := getDirectorySize(config.GetMediaRoot())
	if err != nil {
		log.Errorln(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"summary": map[string]interface{}{
			"total_videos":       len(all),
			"processed_videos":   processed,
			"unprocessed_videos": len(all) - processed,
		},
		"videos": statuses,
		"ffmpeg": ffmpegVersion,
		"disk": map[string]interface{}{
			"free_mib": fmt.Sprintf("%.2f", float64(free)/1024/1024),
			"used_mib": fmt.Sprintf("%.2f", float64(used)/1024/1024),
		},
	})
}

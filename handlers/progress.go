package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"streamhub/videos"
)

type progressRequest struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	IsCompleted    bool    `json:"is_completed"`
}

type progressResponse struct {
	VideoID            uint    `json:"video_id"`
	ElapsedSeconds     float64 `json:"elapsed_seconds"`
	IsCompleted        bool    `json:"is_completed"`
	ProgressPercentage float64 `json:"progress_percentage"`
	LastWatched        string  `json:"last_watched"`
}

func progressJSON(p videos.WatchProgress, duration float64) progressResponse {
	return progressResponse{
		VideoID:            p.VideoID,
		ElapsedSeconds:     p.ElapsedSeconds,
		IsCompleted:        p.IsCompleted,
		ProgressPercentage: p.ProgressPercentage(duration),
		LastWatched:        p.LastWatched.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// PostProgress records a player heartbeat for the session viewer.
func PostProgress(c echo.Context) error {
	viewer, err := GetViewer(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "not logged in"})
	}

	video, err := videoParam(c)
	if err != nil {
		return err
	}
	if !video.IsProcessed {
		return echo.NewHTTPError(http.StatusNotFound, "video not found")
	}

	var req progressRequest
	if err := c.Bind(&req); err != nil || req.ElapsedSeconds < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "bad progress payload")
	}

	progress, err := videos.RecordProgress(viewer.Id, video.ID, req.ElapsedSeconds, req.IsCompleted)
	if err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "couldn't record progress")
	}
	return c.JSON(http.StatusOK, progressJSON(progress, video.Duration))
}

// GetProgress lists the session viewer's progress across all videos.
func GetProgress(c echo.Context) error {
	viewer, err := GetViewer(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "not logged in"})
	}

	rows, err := videos.ProgressForUser(viewer.Id)
	if err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "couldn't load progress")
	}

	out := make([]progressResponse, 0, len(rows))
	for _, p := range rows {
		duration := 0.0
		if video, err := videos.Get(p.VideoID); err == nil {
			duration = video.Duration
		}
		out = append(out, progressJSON(p, duration))
	}
	return c.JSON(http.StatusOK, out)
}

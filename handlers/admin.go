package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"streamhub/config"
	"streamhub/jobs"
	"streamhub/videos"
)

// ForceProcess enqueues a pipeline run for one video. Re-processing a
// completed video is safe; already-built renditions are skipped.
func ForceProcess(c echo.Context) error {
	video, err := videoParam(c)
	if err != nil {
		return err
	}
	if video.SourcePath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "video has no source file to process")
	}

	if err := jobs.Submit(jobs.ProcessVideo, video.ID); err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "couldn't enqueue job")
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"detail":   "queued for processing",
		"video_id": video.ID,
	})
}

// MarkProcessed is the manual override for when an operator wants a
// video surfaced without (re)running the pipeline.
func MarkProcessed(c echo.Context) error {
	video, err := videoParam(c)
	if err != nil {
		return err
	}
	if err := videos.MarkProcessed(video.ID); err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "couldn't update video")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"detail":   "marked processed",
		"video_id": video.ID,
	})
}

// DeleteVideo removes the video, its renditions, progress rows, and all
// files on disk.
func DeleteVideo(c echo.Context) error {
	video, err := videoParam(c)
	if err != nil {
		return err
	}
	if err := videos.Delete(video.ID, config.GetMediaRoot()); err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "couldn't delete video")
	}
	return c.NoContent(http.StatusNoContent)
}

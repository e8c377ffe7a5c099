package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"

	"streamhub/config"
	"streamhub/hls"
	"streamhub/videos"
)

func corsHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func videoParam(c echo.Context) (videos.Video, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return videos.Video{}, echo.NewHTTPError(http.StatusNotFound, "video not found")
	}
	video, err := videos.Get(uint(id))
	if err != nil {
		return videos.Video{}, echo.NewHTTPError(http.StatusNotFound, "video not found")
	}
	return video, nil
}

// Manifest serves the rendition playlist with segment references
// rewritten to route back through the segment endpoint.
func Manifest(c echo.Context) error {
	video, err := videoParam(c)
	if err != nil {
		return err
	}
	if !video.IsProcessed {
		return echo.NewHTTPError(http.StatusNotFound, "video not found")
	}

	quality := c.Param("quality")
	if _, ok := config.ProfileFor(quality); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown quality")
	}
	if !hls.Exists(config.GetMediaRoot(), video.ID, quality) {
		return echo.NewHTTPError(http.StatusNotFound, "rendition not available")
	}

	raw, err := os.ReadFile(hls.ManifestPath(config.GetMediaRoot(), video.ID, quality))
	if err != nil {
		log.Errorln(err)
		return echo.NewHTTPError(http.StatusNotFound, "error reading manifest")
	}

	base := fmt.Sprintf("%s://%s/api/videos/%d/hls/%s", c.Scheme(), c.Request().Host, video.ID, quality)
	finalized := hls.FinalizeManifest(raw, base)

	corsHeaders(c)
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "application/vnd.apple.mpegurl", finalized)
}

// Segment serves one media segment. Segment names outside the encoder's
// naming scheme are rejected before touching the filesystem.
func Segment(c echo.Context) error {
	video, err := videoParam(c)
	if err != nil {
		return err
	}
	if !video.IsProcessed {
		return echo.NewHTTPError(http.StatusNotFound, "video not found")
	}

	quality := c.Param("quality")
	segment := c.Param("segment")
	if !hls.IsSegmentName(segment) {
		return echo.NewHTTPError(http.StatusNotFound, "no such segment")
	}

	path := filepath.Join(hls.Dir(config.GetMediaRoot(), video.ID, quality), segment)
	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no such segment")
	}

	corsHeaders(c)
	c.Response().Header().Set("Cache-Control", "max-age=3600")
	c.Response().Header().Set("Content-Type", "video/MP2T")
	return c.File(path)
}

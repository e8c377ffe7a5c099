package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"streamhub/config"
	"streamhub/database"
	"streamhub/ffmpeg"
	"streamhub/handlers"
	"streamhub/jobs"
	"streamhub/pipeline"
	"streamhub/videos"
)

func main() {

	initLogger()

	log.Infof("GitSHA: %s", config.GetGitSHA())
	log.Infof("BuildDate: %s", config.GetBuildDate())

	if err := config.ValidateProfiles(); err != nil {
		log.Panicf("bad quality profile configuration: %v", err)
	}

	ffmpeg.Init(log)
	videos.Init(log)
	jobs.Init(log)
	pipeline.Init(log)
	if err := handlers.Init(log); err != nil {
		log.Panicf("%v", err)
	}

	err := os.MkdirAll(config.GetConfigDir(), 0700)
	if err != nil {
		log.Panicf("failed to create config dir %s", config.GetConfigDir())
	}

	dbPath := filepath.Join(config.GetConfigDir(), "streamhub.db")
	db, err := database.Open(dbPath)
	if err != nil {
		log.Panicf("failed to connect to database %s", dbPath)
	}

	db.AutoMigrate(&videos.Video{}, &videos.VideoQuality{}, &videos.WatchProgress{}, &jobs.Job{})

	database.Init(db, log)
	defer database.Fini()

	mediaRoot := config.GetMediaRoot()

	orchestrator := pipeline.New(mediaRoot)
	jobs.Register(jobs.ProcessVideo, orchestrator.Process)

	go videos.PeriodicCleanup(mediaRoot)

	// start the processing worker
	statePath := filepath.Join(config.GetConfigDir(), "worker-state.json")
	go jobs.Worker(context.Background(), statePath)

	// Initialize Echo
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Routes
	e.GET("/api/videos/:id/hls/:quality/index.m3u8", handlers.Manifest)
	e.GET("/api/videos/:id/hls/:quality/:segment", handlers.Segment)

	e.POST("/api/videos/:id/progress", handlers.PostProgress, handlers.AuthMiddleware)
	e.GET("/api/progress", handlers.GetProgress, handlers.AuthMiddleware)
	e.DELETE("/api/videos/:id", handlers.DeleteVideo, handlers.AuthMiddleware)

	adminGroup := e.Group("/api/admin")
	adminGroup.Use(handlers.AdminMiddleware)
	adminGroup.GET("/status", handlers.StatusGet)
	adminGroup.POST("/videos/:id/process", handlers.ForceProcess)
	adminGroup.POST("/videos/:id/mark-processed", handlers.MarkProcessed)

	thumbGroup := e.Group("/media/thumbnails")
	thumbGroup.Static("/", filepath.Join(mediaRoot, "thumbnails"))

	// Start server
	e.Logger.Fatal(e.Start(config.GetListenAddr()))
}

package jobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"streamhub/database"
)

var log *logrus.Logger

func Init(logger *logrus.Logger) error {
	log = logger.WithFields(logrus.Fields{
		"component": "jobs",
	}).Logger
	return nil
}

func Fini() {}

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// ProcessVideo is the job name for a full pipeline run.
const ProcessVideo = "process_video"

// Job is one queued unit of work against a single video.
type Job struct {
	gorm.Model
	Token   string `gorm:"uniqueIndex"`
	Name    string
	VideoID uint
	Status  Status
}

// Handler runs one job. Only a fatal condition (video or source missing)
// should be returned as an error; everything else is the handler's own
// business.
type Handler func(ctx context.Context, videoID uint) error

var handlers = map[string]Handler{}

func Register(name string, h Handler) {
	handlers[name] = h
}

// Submit enqueues a job, fire-and-forget. A video with a pending job of
// the same name is not enqueued again; the pipeline's idempotence makes
// re-submission after completion safe.
func Submit(name string, videoID uint) error {
	db := database.Get()

	var count int64
	err := db.Model(&Job{}).
		Where("name = ? AND video_id = ? AND status = ?", name, videoID, StatusPending).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debugf("job %s for video %d already pending", name, videoID)
		return nil
	}

	job := Job{
		Token:   uuid.Must(uuid.NewV7()).String(),
		Name:    name,
		VideoID: videoID,
		Status:  StatusPending,
	}
	log.Infof("submit job %s video=%d token=%s", name, videoID, job.Token)
	return db.Create(&job).Error
}

func setStatus(id uint, status Status) {
	db := database.Get()
	if err := db.Model(&Job{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		log.Errorln(err)
	}
}

package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/renameio/v2"
	"gorm.io/gorm"

	"streamhub/database"
)

// one job at a time; scale is worker processes, not goroutines
func drainPending(ctx context.Context) {
	log.Debugln("drainPending...")
	db := database.Get()

	// any running jobs here got stuck or died in the middle, so reset them
	db.Model(&Job{}).Where("status = ?", StatusRunning).Update("status", StatusPending)

	for {
		var job Job
		err := db.Where("status = ?", StatusPending).Order("id").First(&job).Error
		if err == gorm.ErrRecordNotFound {
			log.Debugln("no pending jobs")
			break
		}
		if err != nil {
			log.Errorln(err)
			break
		}

		handler, ok := handlers[job.Name]
		if !ok {
			log.Errorf("no handler registered for job %s", job.Name)
			setStatus(job.ID, StatusFailed)
			continue
		}

		setStatus(job.ID, StatusRunning)
		start := time.Now()
		if err := handler(ctx, job.VideoID); err != nil {
			log.Errorf("job %s video=%d failed after %s: %v", job.Name, job.VideoID, time.Since(start), err)
			setStatus(job.ID, StatusFailed)
			continue
		}
		log.Infof("job %s video=%d done in %s", job.Name, job.VideoID, time.Since(start))
		setStatus(job.ID, StatusDone)
	}
}

// finished jobs are kept for a day so the status endpoint has history
func cleanupFinished() {
	db := database.Get()
	cutoff := time.Now().Add(-24 * time.Hour)
	result := db.Unscoped().
		Where("status IN ? AND updated_at < ?", []Status{StatusDone, StatusFailed}, cutoff).
		Delete(&Job{})
	if result.Error != nil {
		log.Errorln(result.Error)
	} else if result.RowsAffected > 0 {
		log.Infof("cleaned up %d finished jobs", result.RowsAffected)
	}
}

// workerState is persisted after every drain so operators can see the
// worker heartbeat even without the HTTP surface.
type workerState struct {
	UpdatedAt time.Time `json:"updated_at"`
	Pending   int64     `json:"pending"`
	Running   int64     `json:"running"`
	Done      int64     `json:"done"`
	Failed    int64     `json:"failed"`
}

func writeState(path string) {
	if path == "" {
		return
	}
	db := database.Get()

	state := workerState{UpdatedAt: time.Now()}
	counts := []struct {
		status Status
		dst    *int64
	}{
		{StatusPending, &state.Pending},
		{StatusRunning, &state.Running},
		{StatusDone, &state.Done},
		{StatusFailed, &state.Failed},
	}
	for _, c := range counts {
		if err := db.Model(&Job{}).Where("status = ?", c.status).Count(c.dst).Error; err != nil {
			log.Errorln(err)
			return
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Errorln(err)
		return
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		log.Errorf("write worker state %s: %v", path, err)
	}
}

// Worker drains pending jobs, then polls. Blocks until ctx is done.
func Worker(ctx context.Context, statePath string) {
	drainPending(ctx)
	writeState(statePath)

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupFinished()
			drainPending(ctx)
			writeState(statePath)
		}
	}
}

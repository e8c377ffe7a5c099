package videos

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"streamhub/database"
)

// CleanupOrphans removes rendition directories whose video row is gone,
// which can happen if a delete crashed between the row and file removal.
func CleanupOrphans(mediaRoot string) {
	log.Debugln("cleanupOrphans...")
	db := database.Get()

	entries, err := os.ReadDir(filepath.Join(mediaRoot, "videos"))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorln("read videos dir:", err)
		}
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			// not one of ours
			continue
		}
		var count int64
		if err := db.Model(&Video{}).Where("id = ?", id).Count(&count).Error; err != nil {
			log.Errorln(err)
			continue
		}
		if count == 0 {
			dir := filepath.Join(mediaRoot, "videos", entry.Name())
			log.Infof("removing orphaned output %s", dir)
			if err := os.RemoveAll(dir); err != nil {
				log.Errorln(err)
			}
		}
	}
}

func vacuumDatabase() {
	db := database.Get()
	if err := db.Exec("VACUUM").Error; err != nil {
		log.Errorln(err)
	}
}

func PeriodicCleanup(mediaRoot string) {
	CleanupOrphans(mediaRoot)
	vacuumDatabase()
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		CleanupOrphans(mediaRoot)
		vacuumDatabase()
	}
}

package utils

import (
	"time"

	"solar-proposal-backend/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Retry configuration
const maxRetries = 3

var retryDelay = 2 * time.Minute

// CleanupArchive removes archived proposal PDFs older than retention.
func CleanupArchive(storage FileStorage, retention time.Duration) error {
	removed, err := storage.DeleteOlderThan(retention)
	if err != nil {
		return err
	}
	config.Logger.Info("Archive cleanup finished",
		zap.Int("removed", removed),
		zap.Duration("retention", retention),
	)
	return nil
}

// runWithRetries runs job until it succeeds or maxRetries attempts failed.
func runWithRetries(name string, job func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = job(); err == nil {
			return nil
		}
		config.Logger.Warn("Scheduled task attempt failed",
			zap.String("task", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return err
}

// RunScheduledCleanup schedules the archive cleanup daily at 03:00 in the
// application timezone. The returned scheduler is already started.
func RunScheduledCleanup(storage FileStorage, retention time.Duration, loc *time.Location) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc("0 3 * * *", func() {
		config.Logger.Info("Running scheduled archive cleanup")
		if err := runWithRetries("archive_cleanup", func() error {
			return CleanupArchive(storage, retention)
		}); err != nil {
			config.Logger.Error("Archive cleanup failed after retries",
				zap.Int("retries", maxRetries),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

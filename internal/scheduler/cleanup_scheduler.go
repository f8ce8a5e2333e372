package scheduler

import (
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CleanupScheduler purges expired password reset records on a cron spec
type CleanupScheduler struct {
	cron      *cron.Cron
	spec      string
	resetRepo repository.PasswordResetRepository
}

func NewCleanupScheduler(spec string, resetRepo repository.PasswordResetRepository) *CleanupScheduler {
	return &CleanupScheduler{
		cron:      cron.New(),
		spec:      spec,
		resetRepo: resetRepo,
	}
}

// Start registers the job, runs one pass right away and starts the cron loop
func (s *CleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for cleanup", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.RunOnce()
	s.cron.Start()
	logger.Info("Cleanup scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce deletes expired password resets. Failures are logged and retried on the next tick.
func (s *CleanupScheduler) RunOnce() {
	deleted, err := s.resetRepo.DeleteExpired()
	if err != nil {
		logger.Error("Failed to delete expired password resets", err)
		return
	}

	if deleted > 0 {
		logger.Info("Expired password resets deleted", map[string]interface{}{
			"count": deleted,
		})
	}
}

// Stop waits for a running job to finish
func (s *CleanupScheduler) Stop() {
	logger.Info("Stopping cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Cleanup scheduler stopped")
}

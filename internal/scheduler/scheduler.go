package scheduler

import (
	"context"
	"time"

	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/pkg/admin/reactivation"

	"github.com/robfig/cron/v3"
)

const (
	expiredPauseLockKey = "scheduler:reactivate-expired"
	DefaultJobTimeout   = 5 * time.Minute
)

// ExpiredReactivator is the slice of the reactivation orchestrator the job needs
type ExpiredReactivator interface {
	ReactivateExpired(ctx context.Context) (*reactivation.BatchResult, error)
}

var _ ExpiredReactivator = (*reactivation.Orchestrator)(nil)

type Config struct {
	Spec       string
	Location   *time.Location
	JobTimeout time.Duration
	// LockTTL should stay below the cron interval
	LockTTL time.Duration
}

type Scheduler struct {
	cron        *cron.Cron
	reactivator ExpiredReactivator
	locker      Locker
	logger      logger.ILogger
	cfg         Config
}

func New(reactivator ExpiredReactivator, locker Locker, log logger.ILogger, cfg Config) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(cfg.Location)),
		reactivator: reactivator,
		locker:      locker,
		logger:      log,
		cfg:         cfg,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("SCHEDULER", "Expired pause reactivation scheduled", map[string]interface{}{
		"spec": s.cfg.Spec,
	})
	return nil
}

// Stop waits for a running tick to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce reactivates expired pause records if this instance wins the lock.
// Reports whether the job ran.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	acquired, err := s.locker.TryLock(ctx, expiredPauseLockKey, s.cfg.LockTTL)
	if err != nil {
		s.logger.Error("SCHEDULER", "Failed to acquire job lock", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if !acquired {
		s.logger.Debug("SCHEDULER", "Another instance holds the job lock", nil)
		return false
	}

	result, err := s.reactivator.ReactivateExpired(ctx)
	if err != nil {
		s.logger.Error("SCHEDULER", "Expired pause reactivation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return true
	}

	reactivated := 0
	for _, r := range result.Results {
		reactivated += r.ReactivatedCount
	}
	s.logger.Info("SCHEDULER", "Expired pause reactivation finished", map[string]interface{}{
		"records":        len(result.Results),
		"reactivated":    reactivated,
		"failed_records": len(result.Failed),
	})
	return true
}

package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPurgeSchedule runs the revocation purge once an hour
const DefaultPurgeSchedule = "@hourly"

// RevocationPurgeJob periodically deletes expired revocation entries
type RevocationPurgeJob struct {
	purger   Purger
	schedule string
	cron     *cron.Cron
	log      *zap.Logger
	now      func() time.Time
}

// NewRevocationPurgeJob creates a purge job on the given cron schedule
func NewRevocationPurgeJob(purger Purger, schedule string, log *zap.Logger) *RevocationPurgeJob {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RevocationPurgeJob{
		purger:   purger,
		schedule: schedule,
		cron:     cron.New(),
		log:      log.Named("revocation-purge"),
		now:      time.Now,
	}
}

// Start registers the job and starts the scheduler
func (j *RevocationPurgeJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = j.Run(ctx)
	}); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("scheduled", zap.String("schedule", j.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running purge to finish
func (j *RevocationPurgeJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run purges once and reports how many entries were removed
func (j *RevocationPurgeJob) Run(ctx context.Context) (int64, error) {
	n, err := j.purger.PurgeExpired(ctx, j.now())
	if err != nil {
		j.log.Error("purge failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		j.log.Info("purged expired revocations", zap.Int64("count", n))
	}
	return n, nil
}

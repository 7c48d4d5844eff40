package scheduler

import (
	"context"
	"time"

	"github.com/kroma-network/zkvm-common/internal/logger"
)

// tickInterval is how often due times are polled. Schedules finer than
// this run late, never early. Variable for tests.
var tickInterval = time.Minute

// Job is one unit of scheduled maintenance work. Run is invoked inline in
// the scheduler loop; long jobs delay other due jobs, not the store.
type Job struct {
	Name     string
	Schedule Schedule
	Run      func(ctx context.Context) error
}

// Service runs maintenance jobs at the times their schedules produce.
type Service struct {
	jobs []Job
	stop chan struct{}
}

// NewService creates a scheduler over the given jobs.
func NewService(jobs ...Job) *Service {
	return &Service{jobs: jobs, stop: make(chan struct{})}
}

// Start runs the scheduler loop until ctx is cancelled or Stop is called.
// Each job's first run happens one schedule period after Start, not
// immediately.
func (s *Service) Start(ctx context.Context) {
	if len(s.jobs) == 0 {
		return
	}

	now := time.Now()
	next := make([]time.Time, len(s.jobs))
	for i, job := range s.jobs {
		next[i] = job.Schedule.Next(now)
		logger.Info("Scheduled maintenance job", "job", job.Name, "first_run", next[i])
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped by context")
			return
		case <-s.stop:
			logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			now := time.Now()
			for i, job := range s.jobs {
				if now.Before(next[i]) {
					continue
				}
				s.runJob(ctx, job)
				next[i] = job.Schedule.Next(now)
			}
		}
	}
}

// Stop gracefully stops the scheduler. Call it once.
func (s *Service) Stop() {
	close(s.stop)
}

func (s *Service) runJob(ctx context.Context, job Job) {
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "Maintenance job failed", "job", job.Name, "error", err)
		return
	}
	logger.Debug("Maintenance job finished", "job", job.Name, "took", time.Since(start))
}

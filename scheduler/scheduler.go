package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 10 * time.Minute

// Job is a periodic task.
type Job func(ctx context.Context) error

type entry struct {
	id       cron.EntryID
	schedule string
	job      Job
}

// Scheduler runs named jobs on cron schedules. A job whose previous run is
// still going is skipped rather than stacked.
type Scheduler struct {
	cron     *cron.Cron
	logger   logrus.FieldLogger
	timezone *time.Location

	mu   sync.Mutex
	jobs map[string]entry
}

// New creates a scheduler in timezone; "" means UTC.
func New(timezone string, logger logrus.FieldLogger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.PrintfLogger(logger)), cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)
	return &Scheduler{
		cron:     c,
		logger:   logger.WithField("component", "scheduler"),
		timezone: loc,
		jobs:     make(map[string]entry),
	}, nil
}

// AddJob registers job under name. schedule uses the standard five-field cron
// format or descriptors such as "@every 1m". Re-adding a name replaces it.
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_ = s.run(ctx, name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.mu.Lock()
	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old.id)
	}
	s.jobs[name] = entry{id: id, schedule: schedule, job: job}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"job": name, "schedule": schedule}).Info("Added job")
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) error {
	log := s.logger.WithField("job", name)
	log.Debug("Starting job")
	start := time.Now()
	if err := job(ctx); err != nil {
		log.WithError(err).Error("Job failed")
		return err
	}
	log.WithField("duration", time.Since(start).String()).Debug("Job completed")
	return nil
}

// RemoveJob unschedules name; unknown names are ignored.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[name]; ok {
		s.cron.Remove(e.id)
		delete(s.jobs, name)
		s.logger.WithField("job", name).Info("Removed job")
	}
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler")
	return s.cron.Stop()
}

// RunNow executes the job registered under name immediately.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	return s.run(ctx, name, e.job)
}

// JobInfo describes a scheduled job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
	LastRun  time.Time `json:"last_run"`
}

// ListJobs returns the scheduled jobs ordered by name.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		ce := s.cron.Entry(e.id)
		infos = append(infos, JobInfo{
			Name:     name,
			Schedule: e.schedule,
			NextRun:  ce.Next,
			LastRun:  ce.Prev,
		})
	}
	s.mu.Unlock()

	slices.SortFunc(infos, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

// Scheduler manages the background cron jobs.
type Scheduler struct {
	gocron gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New() (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// AddCronJob schedules jobFunc with a crontab expression. Jobs run in
// singleton mode so a slow run is never overlapped by the next one.
func (s *Scheduler) AddCronJob(name, crontab string, jobFunc JobFunc) error {
	_, err := s.gocron.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(s.wrapJobFunc(name, jobFunc)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}
	log.Info("Added job to scheduler", "name", name, "schedule", crontab)
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.gocron.Start()
	log.Info("Job scheduler started")
}

// Stop stops the scheduler and cancels any running job.
func (s *Scheduler) Stop() error {
	log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

func (s *Scheduler) wrapJobFunc(name string, jobFunc JobFunc) func() {
	return func() {
		log.Info("Starting job", "name", name)
		if err := jobFunc(s.ctx); err != nil {
			log.Error("Job failed", "name", name, "error", err)
			return
		}
		log.Info("Job completed successfully", "name", name)
	}
}

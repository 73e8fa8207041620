package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/thirty-today/internal/digest"
)

// runTimeout bounds one refresh; a paced run makes a few hundred requests.
const runTimeout = 2 * time.Hour

// Refresher rebuilds and persists the document.
type Refresher interface {
	Refresh(ctx context.Context) (digest.Document, error)
}

// Scheduler runs a daily refresh at a fixed UTC time of day.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	at        string
	log       *slog.Logger
	job       *gocron.Job

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. at is "HH:MM" in UTC; empty disables scheduling.
func New(at string, service Refresher, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		service:   service,
		at:        at,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.at == "" {
		s.log.Info("scheduler: no refresh time configured; nothing to schedule")
		return nil
	}

	job, err := s.scheduler.Every(1).Day().At(s.at).Do(s.run)
	if err != nil {
		return err
	}
	s.job = job

	s.scheduler.StartAsync()
	s.log.Info("scheduler: daily refresh scheduled", slog.String("at", s.at), slog.Time("next_run", job.NextRun()))
	return nil
}

// NextRun reports the next scheduled refresh; zero when nothing is scheduled.
func (s *Scheduler) NextRun() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

func (s *Scheduler) run() {
	s.log.Info("scheduler: running refresh job")

	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()

	if _, err := s.service.Refresh(ctx); err != nil {
		s.log.Error("scheduler: refresh failed", slog.Any("err", err))
		return
	}
	s.log.Info("scheduler: completed refresh job")
}

// Stop stops the scheduler and cancels a refresh in flight.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

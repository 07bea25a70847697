package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

const DefaultSweepInterval = time.Hour

// Sweeper is the part of the review service the periodic job drives.
type Sweeper interface {
	SweepAll(ctx context.Context) (services.SweepAllResult, error)
}

// SweepJob resets overdue topics for every owner on a fixed interval.
type SweepJob struct {
	log       *logger.Logger
	sweeper   Sweeper
	interval  time.Duration
	scheduler gocron.Scheduler

	stopOnce sync.Once
	stopErr  error
}

func NewSweepJob(baseLog *logger.Logger, sweeper Sweeper, interval time.Duration) (*SweepJob, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &SweepJob{
		log:       baseLog.With("job", "OverdueSweep"),
		sweeper:   sweeper,
		interval:  interval,
		scheduler: s,
	}, nil
}

// Start registers the job and runs it once immediately. The job stops when ctx is cancelled or
// Shutdown is called.
func (j *SweepJob) Start(ctx context.Context) error {
	_, err := j.scheduler.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() { j.RunOnce(ctx) }),
		gocron.WithName("overdue-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	j.scheduler.Start()
	j.log.Info("overdue sweep scheduled", "interval", j.interval.String())
	go func() {
		<-ctx.Done()
		_ = j.Shutdown()
	}()
	return nil
}

// RunOnce performs a single sweep across all owners.
func (j *SweepJob) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	res, err := j.sweeper.SweepAll(ctx)
	if err != nil {
		j.log.Warn("overdue sweep finished with errors", "owners", res.Owners, "topics", res.Topics, "error", err)
		return
	}
	j.log.Info("overdue sweep finished", "owners", res.Owners, "topics", res.Topics, "took", time.Since(start).String())
}

// Shutdown stops the scheduler and waits for a running sweep. Safe to call more than once.
func (j *SweepJob) Shutdown() error {
	j.stopOnce.Do(func() { j.stopErr = j.scheduler.Shutdown() })
	return j.stopErr
}

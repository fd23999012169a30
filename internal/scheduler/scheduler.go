// Package scheduler runs configured competitive analyses on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
)

// Retry configuration constants
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 30 * time.Second
)

// Runner runs one competitive analysis
type Runner interface {
	RunAnalysis(ctx context.Context, prompts []string, brandName string) (*models.AggregatedAnalysis, error)
}

// Scheduler manages scheduled analyses
type Scheduler struct {
	runner     Runner
	cron       *cron.Cron
	schedules  []models.Schedule
	entries    map[string]cron.EntryID
	lastRun    map[string]time.Time
	maxRetries int
	retryDelay time.Duration
	running    bool
	mu         sync.RWMutex
	log        *logger.Logger
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetry sets how many times an analysis where no prompt succeeded is
// attempted, and the pause between attempts
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		s.retryDelay = delay
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// New creates a new scheduler. Schedules without an ID get one.
func New(runner Runner, schedules []models.Schedule, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:     runner,
		cron:       cron.New(),
		schedules:  make([]models.Schedule, len(schedules)),
		entries:    make(map[string]cron.EntryID),
		lastRun:    make(map[string]time.Time),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		log:        logger.GetLogger().Named("scheduler"),
	}
	copy(s.schedules, schedules)
	for i := range s.schedules {
		if s.schedules[i].ID == "" {
			s.schedules[i].ID = uuid.New().String()
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers every enabled schedule and starts the cron loop. A schedule
// that fails to register is logged and skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	for i := range s.schedules {
		schedule := s.schedules[i]
		if !schedule.Enabled {
			continue
		}
		if err := s.registerSchedule(ctx, schedule); err != nil {
			s.log.Error("Failed to register schedule %s: %v", schedule.Name, err)
		}
	}

	s.cron.Start()
	s.running = true

	s.log.Info("Scheduler started with %d schedule(s)", len(s.entries))
	return nil
}

// Stop stops the scheduler and waits for running analyses to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopped := s.cron.Stop()
	s.running = false
	s.mu.Unlock()

	<-stopped.Done()
	s.log.Info("Scheduler stopped")
}

// Registered returns how many schedules are registered with cron
func (s *Scheduler) Registered() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// registerSchedule registers a schedule with cron
func (s *Scheduler) registerSchedule(ctx context.Context, schedule models.Schedule) error {
	id, err := s.cron.AddFunc(schedule.CronExpr, func() {
		if _, err := s.executeSchedule(ctx, schedule); err != nil {
			s.log.Error("Failed to execute schedule %s: %v", schedule.Name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entries[schedule.ID] = id
	s.log.Info("Registered schedule %s with cron expression: %s", schedule.Name, schedule.CronExpr)
	return nil
}

// executeSchedule runs the schedule's analysis. An analysis in which no
// prompt succeeded is retried after the retry delay.
func (s *Scheduler) executeSchedule(ctx context.Context, schedule models.Schedule) (*models.AggregatedAnalysis, error) {
	s.log.Info("Executing schedule %s: %d prompt(s) for %s", schedule.Name, len(schedule.Prompts), schedule.BrandName)

	s.mu.Lock()
	s.lastRun[schedule.ID] = time.Now()
	s.mu.Unlock()

	var report *models.AggregatedAnalysis
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		var err error
		report, err = s.runner.RunAnalysis(ctx, schedule.Prompts, schedule.BrandName)
		if err != nil {
			return nil, fmt.Errorf("failed to run analysis: %w", err)
		}
		if report.Success {
			if attempt > 1 {
				s.log.Info("Schedule %s succeeded on attempt %d", schedule.Name, attempt)
			}
			s.log.Info("Schedule %s: %d/%d prompts analyzed, average ranking %s",
				schedule.Name, report.PromptsAnalyzed, report.PromptsRequested, formatRank(report.AverageRanking))
			return report, nil
		}

		s.log.Warning("Attempt %d/%d of schedule %s analyzed no prompt", attempt, s.maxRetries, schedule.Name)
		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}

	return report, fmt.Errorf("no prompt analyzed after %d attempts", s.maxRetries)
}

// ExecuteNow runs a schedule immediately, by ID or name
func (s *Scheduler) ExecuteNow(ctx context.Context, idOrName string) (*models.AggregatedAnalysis, error) {
	schedule, ok := s.find(idOrName)
	if !ok {
		return nil, fmt.Errorf("schedule not found: %s", idOrName)
	}
	return s.executeSchedule(ctx, schedule)
}

// Schedules returns the configured schedules with their last and next run
func (s *Scheduler) Schedules() []models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Schedule, len(s.schedules))
	copy(out, s.schedules)
	for i := range out {
		if last, ok := s.lastRun[out[i].ID]; ok {
			out[i].LastRun = &last
		}
		if id, ok := s.entries[out[i].ID]; ok {
			if next := s.cron.Entry(id).Next; !next.IsZero() {
				out[i].NextRun = &next
			}
		}
	}
	return out
}

func (s *Scheduler) find(idOrName string) (models.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, schedule := range s.schedules {
		if schedule.ID == idOrName || strings.EqualFold(schedule.Name, idOrName) {
			return schedule, true
		}
	}
	return models.Schedule{}, false
}

func formatRank(rank *float64) string {
	if rank == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *rank)
}

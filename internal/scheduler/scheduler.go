// Package scheduler triggers scans on cron schedules.
// Jobs hand their request to the scan orchestrator; a trigger that fires
// while a scan is already running is skipped, never queued.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/scanning"
)

// DefaultCron runs a scan every six hours.
const DefaultCron = "0 */6 * * *"

// ScanStarter launches a scan without waiting for it.
type ScanStarter interface {
	Start(req scanning.Request) error
}

// Scheduler manages scheduled scan jobs.
type Scheduler struct {
	starter ScanStarter
	cron    *cron.Cron
	logger  *logging.Logger
	jobs    map[uuid.UUID]*ScheduledJob
	mu      sync.RWMutex
	running bool
}

// ScheduledJob is one registered schedule.
type ScheduledJob struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	CronExpression string           `json:"cron_expression"`
	Request        scanning.Request `json:"request"`
	CreatedAt      time.Time        `json:"created_at"`
	LastRun        *time.Time       `json:"last_run,omitempty"`
	NextRun        *time.Time       `json:"next_run,omitempty"`
	Runs           int              `json:"runs"`
	Skipped        int              `json:"skipped"`
	LastError      string           `json:"last_error,omitempty"`

	cronID cron.EntryID
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(starter ScanStarter, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		starter: starter,
		cron:    cron.New(),
		logger:  logging.OrDefault(logger).WithComponent("scheduler"),
		jobs:    make(map[uuid.UUID]*ScheduledJob),
	}
}

// Start begins firing jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop halts the scheduler. It does not wait for scans already started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false

	s.logger.Info("Scheduler stopped")
}

// AddScanJob registers a scan job under the standard 5-field cron syntax.
func (s *Scheduler) AddScanJob(name, cronExpr string, req scanning.Request) (uuid.UUID, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return uuid.Nil, errors.NewConfigFieldError(errors.CodeValidation,
			fmt.Sprintf("invalid cron expression: %v", err), "schedule.cron", cronExpr)
	}

	job := &ScheduledJob{
		ID:             uuid.New(),
		Name:           name,
		CronExpression: cronExpr,
		Request:        req,
		CreatedAt:      time.Now().UTC(),
	}
	next := schedule.Next(time.Now())
	job.NextRun = &next

	s.mu.Lock()
	defer s.mu.Unlock()

	cronID, err := s.cron.AddFunc(cronExpr, func() { s.execute(job.ID) })
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	job.cronID = cronID
	s.jobs[job.ID] = job

	s.logger.Info("Added scan job", "job", name, "schedule", cronExpr, "next_run", next)
	return job.ID, nil
}

// RemoveJob unregisters a job.
func (s *Scheduler) RemoveJob(jobID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return errors.ErrNotFound("scheduled job")
	}
	s.cron.Remove(job.cronID)
	delete(s.jobs, jobID)

	s.logger.Info("Removed scan job", "job", job.Name)
	return nil
}

// GetJobs returns copies of all jobs ordered by creation time.
func (s *Scheduler) GetJobs() []ScheduledJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		c := *job
		if entry := s.cron.Entry(job.cronID); entry.Valid() && !entry.Next.IsZero() {
			next := entry.Next
			c.NextRun = &next
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// RunNow fires a job immediately, outside its schedule.
func (s *Scheduler) RunNow(jobID uuid.UUID) error {
	s.mu.RLock()
	_, exists := s.jobs[jobID]
	s.mu.RUnlock()
	if !exists {
		return errors.ErrNotFound("scheduled job")
	}
	return s.execute(jobID)
}

// execute starts the scan for a job and records the outcome.
func (s *Scheduler) execute(jobID uuid.UUID) error {
	s.mu.RLock()
	job, exists := s.jobs[jobID]
	var req scanning.Request
	if exists {
		req = job.Request
	}
	s.mu.RUnlock()
	if !exists {
		return errors.ErrNotFound("scheduled job")
	}

	err := s.starter.Start(req)

	s.mu.Lock()
	now := time.Now().UTC()
	job.LastRun = &now
	switch {
	case err == nil:
		job.Runs++
		job.LastError = ""
	case errors.IsCode(err, errors.CodeAlreadyRunning):
		job.Skipped++
	default:
		job.LastError = err.Error()
	}
	name := job.Name
	s.mu.Unlock()

	switch {
	case err == nil:
		s.logger.Info("Scheduled scan started", "job", name)
	case errors.IsCode(err, errors.CodeAlreadyRunning):
		s.logger.Info("Scan already in progress, skipping scheduled run", "job", name)
	default:
		s.logger.Error("Scheduled scan failed to start", "job", name, "error", err)
	}
	return err
}

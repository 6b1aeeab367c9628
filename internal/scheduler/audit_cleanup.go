// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultAuditCleanupSchedule runs the cleanup daily at 03:00.
const DefaultAuditCleanupSchedule = "0 3 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// ValidateSchedule reports whether schedule is a valid five-field cron
// expression or descriptor such as "@daily".
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// AuditCleanupScheduler periodically prunes the audit trail.
type AuditCleanupScheduler struct {
	cleaner   AuditEventCleaner
	schedule  string
	retention time.Duration

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler. Nothing runs until Start.
func NewAuditCleanupScheduler(cleaner AuditEventCleaner, schedule string, retention time.Duration) *AuditCleanupScheduler {
	if schedule == "" {
		schedule = DefaultAuditCleanupSchedule
	}
	return &AuditCleanupScheduler{
		cleaner:   cleaner,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithParser(cronParser)),
	}
}

// Start schedules the cleanup job. A zero retention keeps events forever,
// so nothing is scheduled.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.retention <= 0 {
		log.Printf("Audit cleanup scheduler: disabled (no retention configured)")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(); err != nil {
			log.Printf("Audit cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %v", s.schedule, s.retention)
	return nil
}

// Stop stops the scheduler and waits for a running cleanup to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow prunes immediately and returns the number of deleted events.
func (s *AuditCleanupScheduler) RunNow() (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	deleted, err := s.cleaner.DeleteOldEvents(s.retention)
	if err != nil {
		return 0, fmt.Errorf("cleanup audit events: %w", err)
	}
	if deleted > 0 {
		log.Printf("Audit cleanup: deleted %d events older than %v", deleted, s.retention)
	}
	return deleted, nil
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup will occur, or nil when stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

package audit

import (
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// EventStore persists and queries audit events.
type EventStore interface {
	LogEvent(event *entities.AuditEvent) error
	GetRecentEvents(limit int) ([]entities.AuditEvent, error)
	DeleteOldEvents(olderThan time.Time) (int64, error)
}

// Service provides high-level audit logging functionality.
// Writes happen in the background and never fail the caller.
type Service struct {
	repo EventStore
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo EventStore) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log %s event: %v", event.Action, err)
		}
	}()
}

// Wait blocks until all pending background writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogBook records a successful book mutation.
func (s *Service) LogBook(userID uint, action string, bookID uint, title string) {
	var verb string
	switch action {
	case entities.AuditActionBookCreate:
		verb = "Created"
	case entities.AuditActionBookUpdate:
		verb = "Updated"
	case entities.AuditActionBookDelete:
		verb = "Deleted"
	default:
		verb = action
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBook,
		Action:      action,
		Description: truncate(fmt.Sprintf("%s book %q", verb, title), 500),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// RecentEvents returns the most recent events, newest first.
func (s *Service) RecentEvents(limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetRecentEvents(limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

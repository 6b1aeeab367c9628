package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// DefaultRecentLimit is the number of events returned when no limit is given.
const DefaultRecentLimit = 100

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetRecentEvents returns the most recent events, newest first.
func (r *Repository) GetRecentEvents(limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	events := make([]entities.AuditEvent, 0)
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// GetEventsByType retrieves the most recent events of one type.
func (r *Repository) GetEventsByType(eventType entities.AuditEventType, limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	events := make([]entities.AuditEvent, 0)
	err := r.db.Where("event_type = ?", eventType).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

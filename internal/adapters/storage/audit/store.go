package audit

import (
	"context"
	"time"

	domain "academy/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event has an ID
	// POST: event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter, newest first.
	// PRE: limit > 0
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter defines query parameters for listing audit events. Nil fields are ignored.
type Filter struct {
	Category   *domain.Category
	Action     *domain.Action
	ActorID    *string
	ResourceID *string
	From       *time.Time
	To         *time.Time
}

func (f Filter) matches(e domain.Event) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.Action != nil && e.Action != *f.Action {
		return false
	}
	if f.ActorID != nil && e.ActorID != *f.ActorID {
		return false
	}
	if f.ResourceID != nil && e.ResourceID != *f.ResourceID {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	return true
}

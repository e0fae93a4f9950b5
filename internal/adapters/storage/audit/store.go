package audit

import (
	"context"
	"time"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/audit"
)

// Store persists audit events. Events are append-only.
type Store interface {
	// Save persists an audit event.
	// PRE: event passes Validate
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter, newest first.
	// PRE: limit > 0
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Zero fields do not filter.
type Filter struct {
	Category domain.Category
	ActorID  string
	Since    time.Time
}

// Ensure SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)

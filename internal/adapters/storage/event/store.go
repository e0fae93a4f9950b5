package event

import (
	"context"
	"time"

	domain "github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
)

// Store persists Event records.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]domain.Event, error)
	Create(ctx context.Context, value domain.Event) (int64, error)
	Update(ctx context.Context, value domain.Event) error
	Delete(ctx context.Context, id int64) error
}

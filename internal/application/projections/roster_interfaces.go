package projections

import (
	"context"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

// LeidingStore interface for leiding queries.
type LeidingStore interface {
	GetByID(ctx context.Context, id int64) (leiding.Leiding, error)
	ListActive(ctx context.Context) ([]leiding.Leiding, error)
	ListInactive(ctx context.Context) ([]leiding.Leiding, error)
}

// GroupStore interface for group queries.
type GroupStore interface {
	ListAll(ctx context.Context) ([]group.Group, error)
	ListActive(ctx context.Context) ([]group.Group, error)
}

// EventStore interface for event queries.
type EventStore interface {
	List(ctx context.Context) ([]event.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]event.Event, error)
}

// PostStore interface for post queries.
type PostStore interface {
	List(ctx context.Context) ([]post.Post, error)
	ListPublished(ctx context.Context) ([]post.Post, error)
}

// SettingStore interface for setting queries.
type SettingStore interface {
	List(ctx context.Context) ([]setting.Setting, error)
}

// AccountStore interface for account queries.
type AccountStore interface {
	List(ctx context.Context) ([]account.Account, error)
}

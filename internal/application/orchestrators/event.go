package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
)

// EventStoreForOrchestrator defines the store interface needed by event orchestrators.
type EventStoreForOrchestrator interface {
	GetByID(ctx context.Context, id int64) (event.Event, error)
	Create(ctx context.Context, value event.Event) (int64, error)
	Update(ctx context.Context, value event.Event) error
	Delete(ctx context.Context, id int64) error
}

// EventInput carries the event form. Times are "15:04" in UTC or empty.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	StartTime   string
	EndTime     string
	GroupIDs    []int64
}

// EventDeps holds dependencies for the event orchestrators.
type EventDeps struct {
	EventStore EventStoreForOrchestrator
	Groups     GroupChecker
}

func (in EventInput) toEvent(id int64) event.Event {
	return event.Event{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		GroupIDs:    dedupe(in.GroupIDs),
	}
}

// ExecuteCreateEvent stores a new event.
// PRE: input passes event.Validate; every group id exists
// POST: event stored; id returned
func ExecuteCreateEvent(ctx context.Context, input EventInput, deps EventDeps) (int64, error) {
	e := input.toEvent(0)
	if err := validateEvent(ctx, e, deps.Groups); err != nil {
		return 0, err
	}
	id, err := deps.EventStore.Create(ctx, e)
	if err != nil {
		return 0, err
	}
	slog.Info("event_event", "event", "event_created", "event_id", id, "groups", len(e.GroupIDs))
	return id, nil
}

// ExecuteUpdateEvent overwrites every field of an existing event.
// PRE: event exists
func ExecuteUpdateEvent(ctx context.Context, id int64, input EventInput, deps EventDeps) (event.Event, error) {
	if _, err := deps.EventStore.GetByID(ctx, id); err != nil {
		return event.Event{}, err
	}
	e := input.toEvent(id)
	if err := validateEvent(ctx, e, deps.Groups); err != nil {
		return event.Event{}, err
	}
	if err := deps.EventStore.Update(ctx, e); err != nil {
		return event.Event{}, err
	}
	slog.Info("event_event", "event", "event_updated", "event_id", id)
	return e, nil
}

// ExecuteDeleteEvent removes an event.
func ExecuteDeleteEvent(ctx context.Context, id int64, deps EventDeps) error {
	if err := deps.EventStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("event_event", "event", "event_deleted", "event_id", id)
	return nil
}

func validateEvent(ctx context.Context, e event.Event, groups GroupChecker) error {
	if err := e.Validate(); err != nil {
		return invalid(err)
	}
	for _, id := range e.GroupIDs {
		if err := checkGroup(ctx, groups, &id); err != nil {
			return err
		}
	}
	return nil
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

package projections

import (
	"context"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
)

// GetEventsQuery carries query parameters.
type GetEventsQuery struct {
	UpcomingFrom time.Time // zero lists every event, newest first
	GroupID      int64     // 0 keeps events of every group
}

// EventView is an event with the names of the groups it targets.
type EventView struct {
	event.Event
	GroupNames []string // empty means everyone
}

// GetEventsResult carries the query result.
type GetEventsResult struct {
	Events []EventView
	Groups []group.Group
}

// GetEventsDeps holds dependencies for GetEvents.
type GetEventsDeps struct {
	EventStore EventStore
	GroupStore GroupStore
}

// QueryGetEvents lists events, optionally only upcoming ones and only those
// targeting one group. Events without groups target every group.
func QueryGetEvents(ctx context.Context, query GetEventsQuery, deps GetEventsDeps) (GetEventsResult, error) {
	var (
		events []event.Event
		err    error
	)
	if query.UpcomingFrom.IsZero() {
		events, err = deps.EventStore.List(ctx)
	} else {
		events, err = deps.EventStore.ListUpcoming(ctx, query.UpcomingFrom)
	}
	if err != nil {
		return GetEventsResult{}, err
	}
	groups, err := deps.GroupStore.ListAll(ctx)
	if err != nil {
		return GetEventsResult{}, err
	}
	names := group.NameIndex(groups)

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		if query.GroupID != 0 && !e.TargetsGroup(query.GroupID) {
			continue
		}
		v := EventView{Event: e}
		for _, id := range e.GroupIDs {
			if name, ok := names[id]; ok {
				v.GroupNames = append(v.GroupNames, name)
			}
		}
		views = append(views, v)
	}
	return GetEventsResult{Events: views, Groups: groups}, nil
}

// Plain returns the events without their group names.
func (r GetEventsResult) Plain() []event.Event {
	out := make([]event.Event, len(r.Events))
	for i, v := range r.Events {
		out[i] = v.Event
	}
	return out
}

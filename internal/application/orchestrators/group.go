package orchestrators

import (
	"context"
	"log/slog"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
)

// GroupStoreForOrchestrator defines the store interface needed by group orchestrators.
type GroupStoreForOrchestrator interface {
	GetByID(ctx context.Context, id int64) (group.Group, error)
	Create(ctx context.Context, value group.Group) (int64, error)
	Update(ctx context.Context, value group.Group) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// GroupInput carries the group form.
type GroupInput struct {
	Name        string
	Description string
	Color       string
}

// GroupDeps holds dependencies for the group orchestrators.
type GroupDeps struct {
	GroupStore GroupStoreForOrchestrator
}

// ExecuteCreateGroup creates an active group.
// PRE: Name is non-empty; Color is empty or a palette colour
// POST: group stored with DefaultColor when none was given
func ExecuteCreateGroup(ctx context.Context, input GroupInput, deps GroupDeps) (int64, error) {
	g := group.Group{Name: input.Name, Description: input.Description, Color: input.Color, Active: true}
	if g.Color == "" {
		g.Color = group.DefaultColor
	}
	if err := g.Validate(); err != nil {
		return 0, invalid(err)
	}
	id, err := deps.GroupStore.Create(ctx, g)
	if err != nil {
		return 0, err
	}
	slog.Info("group_event", "event", "group_created", "group_id", id, "name", g.Name)
	return id, nil
}

// ExecuteUpdateGroup overwrites name, description and colour. The active flag is untouched.
// PRE: group exists
func ExecuteUpdateGroup(ctx context.Context, id int64, input GroupInput, deps GroupDeps) (group.Group, error) {
	g, err := deps.GroupStore.GetByID(ctx, id)
	if err != nil {
		return group.Group{}, err
	}
	g.Name = input.Name
	g.Description = input.Description
	if input.Color != "" {
		g.Color = input.Color
	}
	if err := g.Validate(); err != nil {
		return group.Group{}, invalid(err)
	}
	if err := deps.GroupStore.Update(ctx, g); err != nil {
		return group.Group{}, err
	}
	slog.Info("group_event", "event", "group_updated", "group_id", id)
	return g, nil
}

// ExecuteDeactivateGroup hides a group from pickers. Leiding keep their assignment.
// PRE: group exists and is active
// POST: Active is false
func ExecuteDeactivateGroup(ctx context.Context, id int64, deps GroupDeps) error {
	g, err := deps.GroupStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := g.Deactivate(); err != nil {
		return err
	}
	if err := deps.GroupStore.SetActive(ctx, id, false); err != nil {
		return err
	}
	slog.Info("group_event", "event", "group_deactivated", "group_id", id)
	return nil
}

// ExecuteActivateGroup brings a group back. Activating an active group is a no-op.
func ExecuteActivateGroup(ctx context.Context, id int64, deps GroupDeps) error {
	g, err := deps.GroupStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g.Active {
		return nil
	}
	if err := deps.GroupStore.SetActive(ctx, id, true); err != nil {
		return err
	}
	slog.Info("group_event", "event", "group_activated", "group_id", id)
	return nil
}

package orchestrators

import (
	"context"
	"log/slog"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/massedit"
)

// MassEditInput carries the selected ids and the chosen batch action.
type MassEditInput struct {
	IDs    []int64
	Action massedit.Action
}

// MassEditDeps holds dependencies for MassEdit.
type MassEditDeps struct {
	Gateway massedit.Gateway
	Groups  GroupChecker
	Reload  massedit.ReloadFunc
}

// MassEditResult reports the outcome of a confirmed batch.
type MassEditResult struct {
	Updated int
	Action  string
	// Reloaded is false when the batch committed but the roster could not be re-read.
	Reloaded bool
}

// ExecuteMassEdit opens and confirms one mass edit for the given selection.
// Each request owns its own Coordinator; the dialog step happened in the browser.
// PRE: IDs is non-empty; a reassign target names an existing group
// POST: on success every selected leiding carries the change and Reload has run;
// on failure nothing was reported as changed and the error wraps the gateway error.
// A failing Reload after a committed batch is not an error; Reloaded is false.
func ExecuteMassEdit(ctx context.Context, input MassEditInput, deps MassEditDeps) (MassEditResult, error) {
	c := massedit.New(input.IDs, deps.Reload)
	if err := c.Open(input.Action); err != nil {
		return MassEditResult{}, err
	}
	if input.Action.Kind == massedit.ActionReassignGroup {
		target := input.Action.Target
		if err := checkGroup(ctx, deps.Groups, &target); err != nil {
			c.Cancel()
			return MassEditResult{}, err
		}
	}

	if err := c.Confirm(ctx, deps.Gateway); err != nil {
		slog.Error("mass_edit_failed", "action", input.Action.Describe(), "count", len(input.IDs), "error", err)
		return MassEditResult{}, err
	}

	slog.Info("leiding_event", "event", "mass_edit", "action", input.Action.Describe(), "count", len(input.IDs))
	res := MassEditResult{Updated: len(input.IDs), Action: input.Action.Describe(), Reloaded: true}
	if err := c.ReloadErr(); err != nil {
		slog.Warn("mass_edit_reload_failed", "action", input.Action.Describe(), "error", err)
		res.Reloaded = false
	}
	return res, nil
}

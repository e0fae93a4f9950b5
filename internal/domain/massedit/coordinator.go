// Package massedit applies one field change to many leiding at once.
//
// A Coordinator walks Idle → DialogOpen → Submitting and back. Confirm issues a
// single batched gateway call for the whole selection; on success the
// selection is dropped and the roster reloaded, on failure everything stays
// put so the user can retry or cancel. A reload failure after a committed batch
// does not undo the success; it is reported through ReloadErr.
package massedit

import (
	"context"
	"errors"
	"fmt"
)

// State of the coordinator.
type State int

const (
	StateIdle State = iota
	StateDialogOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDialogOpen:
		return "dialog_open"
	case StateSubmitting:
		return "submitting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ActionKind enumerates the batch edits.
type ActionKind int

const (
	ActionWipeGroup     ActionKind = iota // group := nil
	ActionReassignGroup                   // group := target
	ActionDisable                         // active := false
)

// Action is a batch edit with its parameter.
type Action struct {
	Kind   ActionKind
	Target int64 // group id for ActionReassignGroup
}

func WipeGroup() Action                 { return Action{Kind: ActionWipeGroup} }
func ReassignGroup(groupID int64) Action { return Action{Kind: ActionReassignGroup, Target: groupID} }
func Disable() Action                   { return Action{Kind: ActionDisable} }

// Describe returns a short label for logs and notices.
func (a Action) Describe() string {
	switch a.Kind {
	case ActionWipeGroup:
		return "wipe_group"
	case ActionReassignGroup:
		return fmt.Sprintf("reassign_group:%d", a.Target)
	case ActionDisable:
		return "disable"
	}
	return fmt.Sprintf("action(%d)", int(a.Kind))
}

// Errors
var (
	ErrEmptySelection = errors.New("select at least one leiding first")
	ErrInvalidState   = errors.New("mass edit is not in a state that allows this")
	ErrInvalidAction  = errors.New("unknown mass edit action")
	ErrInvalidTarget  = errors.New("reassign needs a target group")
)

// Gateway performs the batched updates. Each call covers all ids in one round trip.
type Gateway interface {
	BatchUpdateGroup(ctx context.Context, ids []int64, groupID *int64) error
	BatchSetActive(ctx context.Context, ids []int64, active bool) error
}

// ReloadFunc re-fetches the roster after a successful batch.
type ReloadFunc func(ctx context.Context) error

// Coordinator holds the selection and dialog state for one mass edit.
// Not safe for concurrent use; one request owns one Coordinator.
type Coordinator struct {
	state     State
	selection []int64
	action    Action
	err       error
	reloadErr error
	reload    ReloadFunc
}

// New starts an idle coordinator over selection. reload may be nil.
func New(selection []int64, reload ReloadFunc) *Coordinator {
	return &Coordinator{
		selection: append([]int64(nil), selection...),
		reload:    reload,
	}
}

// State returns the current state.
func (c *Coordinator) State() State { return c.state }

// Selection returns a copy of the selected ids.
func (c *Coordinator) Selection() []int64 { return append([]int64(nil), c.selection...) }

// Action returns the action of the open dialog.
func (c *Coordinator) Action() Action { return c.action }

// Err returns the failure of the last Confirm, kept while the dialog stays open.
func (c *Coordinator) Err() error { return c.err }

// ReloadErr returns the reload failure that followed the last committed batch.
func (c *Coordinator) ReloadErr() error { return c.reloadErr }

// Open shows the confirmation dialog for a.
// PRE: state is Idle
// POST: state is DialogOpen, or unchanged Idle with ErrEmptySelection
func (c *Coordinator) Open(a Action) error {
	if c.state != StateIdle {
		return ErrInvalidState
	}
	switch a.Kind {
	case ActionWipeGroup, ActionDisable:
	case ActionReassignGroup:
		if a.Target <= 0 {
			return ErrInvalidTarget
		}
	default:
		return ErrInvalidAction
	}
	if len(c.selection) == 0 {
		return ErrEmptySelection
	}
	c.action = a
	c.err = nil
	c.state = StateDialogOpen
	return nil
}

// Cancel closes the dialog and keeps the selection.
func (c *Coordinator) Cancel() {
	if c.state == StateDialogOpen {
		c.state = StateIdle
		c.err = nil
	}
}

// Confirm submits the batch.
// PRE: state is DialogOpen
// POST: on success the selection is empty, state is Idle and reload has run;
// on gateway failure the selection is unchanged and state is DialogOpen
// INVARIANT: a committed batch returns nil even when reload fails
func (c *Coordinator) Confirm(ctx context.Context, gw Gateway) error {
	if c.state != StateDialogOpen {
		return ErrInvalidState
	}
	c.state = StateSubmitting

	var err error
	switch c.action.Kind {
	case ActionWipeGroup:
		err = gw.BatchUpdateGroup(ctx, c.selection, nil)
	case ActionReassignGroup:
		target := c.action.Target
		err = gw.BatchUpdateGroup(ctx, c.selection, &target)
	case ActionDisable:
		err = gw.BatchSetActive(ctx, c.selection, false)
	default:
		err = ErrInvalidAction
	}
	if err != nil {
		c.err = err
		c.state = StateDialogOpen
		return fmt.Errorf("mass edit %s: %w", c.action.Describe(), err)
	}

	c.selection = nil
	c.err = nil
	c.reloadErr = nil
	c.state = StateIdle
	if c.reload != nil {
		if err := c.reload(ctx); err != nil {
			c.reloadErr = fmt.Errorf("reload after mass edit: %w", err)
		}
	}
	return nil
}

// Package audit records who changed what on the dashboard.
package audit

import (
	"errors"
	"time"
)

// Category groups audit events by the part of the dashboard they touch.
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryLeiding  Category = "leiding"
	CategoryGroup    Category = "group"
	CategoryContent  Category = "content"
	CategorySettings Category = "settings"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryAccount, CategoryLeiding, CategoryGroup, CategoryContent, CategorySettings}

// Action represents the action that occurred.
type Action string

const (
	ActionLogin      Action = "login"
	ActionLogout     Action = "logout"
	ActionSessionEnd Action = "session_expired"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionDisable    Action = "disable"
	ActionEnable     Action = "enable"
	ActionMassEdit   Action = "mass_edit"
	ActionExport     Action = "export"
	ActionPermission Action = "permission"
	ActionToggle     Action = "toggle"
	ActionUpload     Action = "upload"
)

// MaxDescriptionLength bounds the free-text part of an event.
const MaxDescriptionLength = 500

var (
	ErrMissingID       = errors.New("audit event id is required")
	ErrMissingCategory = errors.New("audit event category is required")
	ErrMissingAction   = errors.New("audit event action is required")
)

// Event represents a single audit log entry. Actor fields are empty for
// events without a signed-in user.
type Event struct {
	ID           string
	Timestamp    time.Time
	Category     Category
	Action       Action
	ActorID      string
	ActorEmail   string
	ResourceType string
	ResourceID   string
	Description  string
	IPAddress    string
}

// NewEvent creates an audit event at the given time.
// PRE: id, category and action are non-empty
// POST: Returns an Event with only the identifying fields set
func NewEvent(id string, at time.Time, category Category, action Action) Event {
	return Event{
		ID:        id,
		Timestamp: at.UTC(),
		Category:  category,
		Action:    action,
	}
}

// WithActor sets who performed the action.
func (e Event) WithActor(id, email string) Event {
	e.ActorID = id
	e.ActorEmail = email
	return e
}

// WithResource sets resource information.
// PRE: resourceType is non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description, truncated to MaxDescriptionLength runes.
func (e Event) WithDescription(desc string) Event {
	if r := []rune(desc); len(r) > MaxDescriptionLength {
		desc = string(r[:MaxDescriptionLength])
	}
	e.Description = desc
	return e
}

// WithIP sets the client address of the request that caused the event.
func (e Event) WithIP(ip string) Event {
	e.IPAddress = ip
	return e
}

// Validate checks the identifying fields.
// PRE: none
// POST: Returns nil if the event can be stored
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	if e.Category == "" {
		return ErrMissingCategory
	}
	if e.Action == "" {
		return ErrMissingAction
	}
	return nil
}

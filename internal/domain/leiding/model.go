package leiding

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
	MaxTextLength = 2000
)

// DateLayout is the calendar-date format used for birth and tenure dates.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrEmptyFirstName    = errors.New("leiding first name cannot be empty")
	ErrNameTooLong       = errors.New("leiding name cannot exceed 100 characters")
	ErrTextTooLong       = errors.New("leiding free text cannot exceed 2000 characters")
	ErrTenureBeforeBirth = errors.New("tenure start cannot be before birth date")
	ErrAlreadyInactive   = errors.New("leiding is already inactive")
	ErrAlreadyActive     = errors.New("leiding is already active")
)

// Leiding is a staff member of the chapter.
// Role flags are independent: head staff does not imply team lead.
type Leiding struct {
	ID          int64
	FirstName   string
	LastName    string
	BirthDate   time.Time // zero when unknown
	Work        string
	Studies     string
	IsTeamLead  bool      // "trekker"
	IsHeadStaff bool      // "hoofdleiding"
	GroupID     *int64    // nil when unassigned
	TenureStart time.Time // "leiding sinds"; zero when unknown
	Experience  string
	About       string
	PhotoURL    string
	Active      bool
}

// Validate checks if the Leiding has valid data.
// PRE: Leiding struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (l *Leiding) Validate() error {
	if strings.TrimSpace(l.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if len(l.FirstName) > MaxNameLength || len(l.LastName) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(l.Experience) > MaxTextLength || len(l.About) > MaxTextLength {
		return ErrTextTooLong
	}
	if !l.BirthDate.IsZero() && !l.TenureStart.IsZero() && l.TenureStart.Before(l.BirthDate) {
		return ErrTenureBeforeBirth
	}
	return nil
}

// FullName returns first and last name joined by a space.
func (l Leiding) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// HasGroup reports whether the leiding is assigned to a group.
func (l Leiding) HasGroup() bool {
	return l.GroupID != nil
}

// InGroup reports whether the leiding is assigned to the given group.
// INVARIANT: l is not mutated
func (l Leiding) InGroup(groupID int64) bool {
	return l.GroupID != nil && *l.GroupID == groupID
}

// TenureYear returns the year the leiding started, or "" when unknown.
func (l Leiding) TenureYear() string {
	if l.TenureStart.IsZero() {
		return ""
	}
	return strconv.Itoa(l.TenureStart.Year())
}

// Disable flips the leiding to inactive.
// PRE: Leiding is active
// POST: Active is false
func (l *Leiding) Disable() error {
	if !l.Active {
		return ErrAlreadyInactive
	}
	l.Active = false
	return nil
}

// Enable flips the leiding back to active.
// PRE: Leiding is inactive
// POST: Active is true
func (l *Leiding) Enable() error {
	if l.Active {
		return ErrAlreadyActive
	}
	l.Active = true
	return nil
}

// GroupRef returns a pointer to a copy of id, for assigning GroupID.
func GroupRef(id int64) *int64 {
	return &id
}

// ParseDate parses an optional calendar date. Empty input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

// FormatDate formats an optional calendar date. The zero time yields "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

package event

import (
	"errors"
	"fmt"
	"time"
)

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 4000
	MaxLocationLength    = 200
)

// TimeLayout is the time-of-day format for StartTime/EndTime.
const TimeLayout = "15:04"

// Event is a calendar activity targeted at one or more groups.
// Times of day are UTC-normalised; there is no recurrence.
// INVARIANT: EndDate >= StartDate when EndDate is set.
type Event struct {
	ID          int64
	Title       string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time // zero value means single-day event
	StartTime   string    // "15:04", empty when all-day
	EndTime     string    // "15:04", empty when open-ended
	GroupIDs    []int64
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if e.Title == "" {
		return errors.New("event title cannot be empty")
	}
	if len(e.Title) > MaxTitleLength {
		return errors.New("event title cannot exceed 200 characters")
	}
	if e.StartDate.IsZero() {
		return errors.New("event start date is required")
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return errors.New("event end date cannot be before start date")
	}
	if len(e.Description) > MaxDescriptionLength {
		return errors.New("event description cannot exceed 4000 characters")
	}
	if len(e.Location) > MaxLocationLength {
		return errors.New("event location cannot exceed 200 characters")
	}
	if err := validateClock(e.StartTime); err != nil {
		return fmt.Errorf("event start time: %w", err)
	}
	if err := validateClock(e.EndTime); err != nil {
		return fmt.Errorf("event end time: %w", err)
	}
	if !e.IsMultiDay() && e.StartTime != "" && e.EndTime != "" && e.EndTime < e.StartTime {
		return errors.New("event end time cannot be before start time")
	}
	return nil
}

// IsMultiDay returns true if the event spans more than one day.
// PRE: none
// POST: returns true if EndDate is set and on a different calendar day than StartDate
func (e *Event) IsMultiDay() bool {
	if e.EndDate.IsZero() {
		return false
	}
	return e.EndDate.After(e.StartDate) &&
		e.EndDate.Format("2006-01-02") != e.StartDate.Format("2006-01-02")
}

// IsAllDay reports whether the event has no start time.
func (e *Event) IsAllDay() bool {
	return e.StartTime == ""
}

// TargetsGroup reports whether the event is aimed at the given group.
// An event without groups targets everyone.
func (e *Event) TargetsGroup(groupID int64) bool {
	if len(e.GroupIDs) == 0 {
		return true
	}
	for _, id := range e.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// StartsAt combines StartDate and StartTime into a UTC instant.
func (e *Event) StartsAt() time.Time {
	return combine(e.StartDate, e.StartTime)
}

// EndsAt combines the effective end date and EndTime into a UTC instant.
// Single-day events end on StartDate.
func (e *Event) EndsAt() time.Time {
	day := e.EndDate
	if day.IsZero() {
		day = e.StartDate
	}
	return combine(day, e.EndTime)
}

func combine(day time.Time, clock string) time.Time {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if clock == "" {
		return d
	}
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return d
	}
	return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

func validateClock(clock string) error {
	if clock == "" {
		return nil
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return fmt.Errorf("must be HH:MM, got %q", clock)
	}
	return nil
}

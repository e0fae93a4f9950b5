package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
)

// ProductID identifies the feed generator in the VCALENDAR header.
const ProductID = "-//KSA Petegem//Leiding dashboard//NL"

// Calendar renders events as an iCalendar feed.
type Calendar struct {
	Name   string
	Domain string // used to build stable UIDs, e.g. "ksapetegem.be"
	Now    func() time.Time
}

// Write serialises events to w. All-day events use DATE values with an
// exclusive end date; timed events use UTC instants.
func (c Calendar) Write(w io.Writer, events []event.Event) error {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	domain := c.Domain
	if domain == "" {
		domain = "ksapetegem.be"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	if c.Name != "" {
		cal.SetXWRCalName(c.Name)
	}

	stamp := now().UTC()
	for _, e := range events {
		ev := cal.AddEvent(strconv.FormatInt(e.ID, 10) + "@" + domain)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Title)
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.IsAllDay() {
			last := e.EndDate
			if last.IsZero() {
				last = e.StartDate
			}
			ev.SetAllDayStartAt(e.StartDate)
			ev.SetAllDayEndAt(last.AddDate(0, 0, 1))
			continue
		}
		ev.SetStartAt(e.StartsAt())
		end := e.EndsAt()
		if e.EndTime == "" {
			end = e.StartsAt().Add(time.Hour)
		}
		ev.SetEndAt(end)
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

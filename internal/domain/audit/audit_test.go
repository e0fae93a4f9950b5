package audit

import (
	"strings"
	"testing"
	"time"
)

func TestNewEvent_Builders(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	e := NewEvent("ev-1", at, CategoryLeiding, ActionMassEdit).
		WithActor("acct-1", "jana@ksapetegem.be").
		WithResource("leiding", "5,7").
		WithDescription("Groep gewist voor 2 leiding.").
		WithIP("10.0.0.4")

	if e.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp not normalised to UTC: %v", e.Timestamp.Location())
	}
	if !e.Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", e.Timestamp, at)
	}
	if e.ActorEmail != "jana@ksapetegem.be" || e.ResourceID != "5,7" || e.IPAddress != "10.0.0.4" {
		t.Errorf("builder fields not set: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestWithDescription_Truncates(t *testing.T) {
	e := NewEvent("ev-1", time.Now(), CategoryContent, ActionCreate).WithDescription(strings.Repeat("é", MaxDescriptionLength+20))
	if n := len([]rune(e.Description)); n != MaxDescriptionLength {
		t.Errorf("description runes = %d, want %d", n, MaxDescriptionLength)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		want error
	}{
		{"missing id", NewEvent("", time.Now(), CategoryAccount, ActionLogin), ErrMissingID},
		{"missing category", NewEvent("x", time.Now(), "", ActionLogin), ErrMissingCategory},
		{"missing action", NewEvent("x", time.Now(), CategoryAccount, ""), ErrMissingAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.e.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

package leiding_test

import (
	"errors"
	"testing"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// TestLeidingValidation tests validation of Leiding.
func TestLeidingValidation(t *testing.T) {
	birth := time.Date(2001, 5, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		leiding leiding.Leiding
		wantErr error
	}{
		{
			name:    "minimal valid",
			leiding: leiding.Leiding{FirstName: "Anna", Active: true},
		},
		{
			name:    "empty first name",
			leiding: leiding.Leiding{FirstName: "  ", LastName: "Peeters"},
			wantErr: leiding.ErrEmptyFirstName,
		},
		{
			name:    "name too long",
			leiding: leiding.Leiding{FirstName: string(make([]byte, leiding.MaxNameLength+1))},
			wantErr: leiding.ErrNameTooLong,
		},
		{
			name:    "about too long",
			leiding: leiding.Leiding{FirstName: "Bert", About: string(make([]byte, leiding.MaxTextLength+1))},
			wantErr: leiding.ErrTextTooLong,
		},
		{
			name: "tenure before birth",
			leiding: leiding.Leiding{
				FirstName:   "Cas",
				BirthDate:   birth,
				TenureStart: birth.AddDate(-1, 0, 0),
			},
			wantErr: leiding.ErrTenureBeforeBirth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.leiding.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLeiding_DisableEnable verifies the active flag transitions.
func TestLeiding_DisableEnable(t *testing.T) {
	l := leiding.Leiding{FirstName: "Anna", Active: true}
	if err := l.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if l.Active {
		t.Fatal("expected inactive after Disable")
	}
	if err := l.Disable(); !errors.Is(err, leiding.ErrAlreadyInactive) {
		t.Fatalf("second Disable error = %v, want ErrAlreadyInactive", err)
	}
	if err := l.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if err := l.Enable(); !errors.Is(err, leiding.ErrAlreadyActive) {
		t.Fatalf("second Enable error = %v, want ErrAlreadyActive", err)
	}
}

// TestLeiding_DisplayHelpers covers FullName, InGroup and TenureYear.
func TestLeiding_DisplayHelpers(t *testing.T) {
	l := leiding.Leiding{
		FirstName:   "Bert",
		LastName:    "Van Damme",
		GroupID:     leiding.GroupRef(3),
		TenureStart: time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := l.FullName(); got != "Bert Van Damme" {
		t.Errorf("FullName() = %q", got)
	}
	if !l.InGroup(3) || l.InGroup(4) {
		t.Errorf("InGroup mismatch for group %v", *l.GroupID)
	}
	if got := l.TenureYear(); got != "2020" {
		t.Errorf("TenureYear() = %q, want 2020", got)
	}
	if got := (leiding.Leiding{}).TenureYear(); got != "" {
		t.Errorf("TenureYear() on zero tenure = %q, want empty", got)
	}
}

// TestParseDate verifies optional date parsing.
func TestParseDate(t *testing.T) {
	d, err := leiding.ParseDate("")
	if err != nil || !d.IsZero() {
		t.Fatalf("ParseDate(\"\") = %v, %v; want zero, nil", d, err)
	}
	d, err = leiding.ParseDate("2019-09-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if leiding.FormatDate(d) != "2019-09-01" {
		t.Fatalf("round trip got %q", leiding.FormatDate(d))
	}
	if _, err := leiding.ParseDate("01/09/2019"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{
			name:    "valid admin",
			account: account.Account{ID: "1", Email: "admin@ksapetegem.be", Permission: account.PermissionAdmin},
		},
		{
			name:    "valid without access",
			account: account.Account{ID: "2", Email: "new@ksapetegem.be", Permission: account.PermissionNone},
		},
		{
			name:    "empty email",
			account: account.Account{ID: "3", Permission: account.PermissionRead},
			wantErr: account.ErrEmptyEmail,
		},
		{
			name:    "email without at sign",
			account: account.Account{ID: "4", Email: "not-an-email"},
			wantErr: account.ErrInvalidEmail,
		},
		{
			name:    "permission above admin",
			account: account.Account{ID: "5", Email: "x@ksapetegem.be", Permission: 4},
			wantErr: account.ErrInvalidPermission,
		},
		{
			name:    "negative permission",
			account: account.Account{ID: "6", Email: "x@ksapetegem.be", Permission: -1},
			wantErr: account.ErrInvalidPermission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.account.Validate(); err != tt.wantErr {
				t.Errorf("Account.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccount_DisplayName(t *testing.T) {
	a := account.Account{Email: "jan@ksapetegem.be"}
	if got := a.DisplayName(); got != "jan@ksapetegem.be" {
		t.Errorf("DisplayName() = %q, want email fallback", got)
	}
	a.FirstName, a.LastName = "Jan", "Peeters"
	if got := a.DisplayName(); got != "Jan Peeters" {
		t.Errorf("DisplayName() = %q", got)
	}
}

// TestAccount_SetPassword tests the SetPassword method.
func TestAccount_SetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "securepassword123", false},
		{"exactly 8 chars", "12345678", false},
		{"empty password", "", true},
		{"7 chars", "1234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{}
			err := a.SetPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (a.PasswordHash == "" || a.PasswordHash == tt.password) {
				t.Error("SetPassword() should store a hash")
			}
		})
	}
}

// TestAccount_CheckPassword tests the CheckPassword method.
func TestAccount_CheckPassword(t *testing.T) {
	a := &account.Account{}
	if err := a.SetPassword("securepassword123"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := a.CheckPassword("securepassword123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := a.CheckPassword("wrongpassword123"); err != account.ErrWrongPassword {
		t.Errorf("wrong password = %v", err)
	}
	if err := (&account.Account{}).CheckPassword("anything1"); err != account.ErrWrongPassword {
		t.Errorf("no hash = %v", err)
	}
}

// TestAccount_Lockout tests RecordFailedLogin, IsLocked and ResetFailedLogins.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	a := &account.Account{}

	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
		if a.IsLocked(now) {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("account should be locked after MaxFailedLogins failures")
	}
	if a.IsLocked(now.Add(account.LockoutDuration)) {
		t.Error("lock should expire after LockoutDuration")
	}

	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Errorf("after reset: failed=%d locked=%v", a.FailedLogins, a.IsLocked(now))
	}
}

func TestPermission_Allows(t *testing.T) {
	tests := []struct {
		p    account.Permission
		min  account.Permission
		want bool
	}{
		{account.PermissionNone, account.PermissionRead, false},
		{account.PermissionRead, account.PermissionRead, true},
		{account.PermissionRead, account.PermissionEdit, false},
		{account.PermissionEdit, account.PermissionEdit, true},
		{account.PermissionEdit, account.PermissionAdmin, false},
		{account.PermissionAdmin, account.PermissionEdit, true},
		{account.Permission(9), account.PermissionRead, false},
	}
	for _, tt := range tests {
		if got := tt.p.Allows(tt.min); got != tt.want {
			t.Errorf("%v.Allows(%v) = %v, want %v", tt.p, tt.min, got, tt.want)
		}
	}
}

func TestParsePermission(t *testing.T) {
	for s, want := range map[string]account.Permission{"0": 0, "1": 1, "2": 2, "3": 3} {
		got, err := account.ParsePermission(s)
		if err != nil || got != want {
			t.Errorf("ParsePermission(%q) = %v, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "4", "-1", "12", "admin"} {
		if _, err := account.ParsePermission(s); err != account.ErrInvalidPermission {
			t.Errorf("ParsePermission(%q) err = %v", s, err)
		}
	}
}

type stubLookup struct {
	p   account.Permission
	err error
}

func (s stubLookup) PermissionFor(context.Context, string) (account.Permission, error) {
	return s.p, s.err
}

func TestResolvePermission(t *testing.T) {
	ctx := context.Background()

	got, err := account.ResolvePermission(ctx, stubLookup{p: account.PermissionEdit}, "u1")
	if err != nil || got != account.PermissionEdit {
		t.Fatalf("stored edit = %v, %v", got, err)
	}

	got, err = account.ResolvePermission(ctx, stubLookup{err: account.ErrAccountNotFound}, "u1")
	if err != nil || got != account.PermissionNone {
		t.Fatalf("missing profile = %v, %v", got, err)
	}

	got, _ = account.ResolvePermission(ctx, stubLookup{p: 7}, "u1")
	if got != account.PermissionNone {
		t.Fatalf("corrupt level = %v, want none", got)
	}

	boom := errors.New("db down")
	if _, err := account.ResolvePermission(ctx, stubLookup{err: boom}, "u1"); !errors.Is(err, boom) {
		t.Fatalf("lookup error = %v", err)
	}

	got, err = account.ResolvePermission(ctx, stubLookup{p: account.PermissionAdmin}, "")
	if err != nil || got != account.PermissionNone {
		t.Fatalf("anonymous = %v, %v", got, err)
	}
}

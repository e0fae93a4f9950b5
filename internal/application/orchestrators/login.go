package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	SaveLoginState(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the identity placed in the session. The permission
// level is deliberately absent; it is resolved per request.
type LoginResult struct {
	AccountID string
	Email     string
	Name      string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns the identity for session creation.
// PRE: email and password provided
// POST: identity on success; failed attempt recorded on a wrong password
// INVARIANT: a locked account cannot sign in, even with the right password
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := deps.Now()

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.SaveLoginState(ctx, acct); err != nil {
			slog.Error("login_state_save_failed", "account_id", acct.ID, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.SaveLoginState(ctx, acct); err != nil {
			slog.Error("login_state_save_failed", "account_id", acct.ID, "error", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "account_id", acct.ID)
	return LoginResult{AccountID: acct.ID, Email: acct.Email, Name: acct.DisplayName()}, nil
}

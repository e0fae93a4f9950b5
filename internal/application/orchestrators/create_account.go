package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/email"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by SignUp and SeedAdmin.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Create(ctx context.Context, a account.Account) error
	List(ctx context.Context) ([]account.Account, error)
	Count(ctx context.Context) (int, error)
}

// SignUpInput carries the sign-up form.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	AccountStore AccountStoreForCreate
	Mailer       email.Sender // nil disables mail
	BaseURL      string
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteSignUp creates an account without any access.
// An administrator grants a permission level afterwards.
// PRE: valid email, password >= 8 chars
// POST: account stored with PermissionNone; welcome mail and admin notices sent best-effort
// INVARIANT: email is unique, case-insensitively
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (account.Account, error) {
	acct, err := createAccount(ctx, input, account.PermissionNone, deps.AccountStore, deps.GenerateID, deps.Now)
	if err != nil {
		return account.Account{}, err
	}
	slog.Info("auth_event", "event", "account_created", "account_id", acct.ID, "email", acct.Email)

	if deps.Mailer != nil {
		sendSignupMail(ctx, acct, deps)
	}
	return acct, nil
}

func createAccount(ctx context.Context, input SignUpInput, p account.Permission, store AccountStoreForCreate, genID func() string, now func() time.Time) (account.Account, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	acct := account.Account{
		ID:         genID(),
		Email:      input.Email,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Permission: p,
		CreatedAt:  now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, invalid(err)
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	_, err := store.GetByEmail(ctx, input.Email)
	if err == nil {
		return account.Account{}, ErrEmailAlreadyExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return account.Account{}, err
	}

	if err := store.Create(ctx, acct); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

// sendSignupMail mails the new user and every administrator. Failures are logged only.
func sendSignupMail(ctx context.Context, acct account.Account, deps SignUpDeps) {
	s := email.Signup{Email: acct.Email, FirstName: acct.FirstName, LastName: acct.LastName}

	welcome, err := email.WelcomeMail(s, deps.BaseURL)
	if err != nil {
		slog.Error("signup_mail_failed", "error", err)
		return
	}
	reqs := []email.SendRequest{welcome}

	admins, err := deps.AccountStore.List(ctx)
	if err != nil {
		slog.Error("signup_mail_admins_failed", "error", err)
	}
	for _, a := range admins {
		if a.Permission != account.PermissionAdmin || a.ID == acct.ID {
			continue
		}
		notice, err := email.SignupNotice(a.Email, s, deps.BaseURL)
		if err != nil {
			slog.Error("signup_mail_failed", "error", err)
			continue
		}
		reqs = append(reqs, notice)
	}

	if _, err := deps.Mailer.SendBatch(ctx, reqs); err != nil {
		slog.Error("signup_mail_failed", "account_id", acct.ID, "error", err)
	}
}

// SeedAdminInput carries the first administrator's credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// ExecuteSeedAdmin creates a full administrator if no accounts exist.
// PRE: database is migrated
// POST: admin account created if count == 0; reports whether it did
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SignUpDeps) (bool, error) {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	acct, err := createAccount(ctx, SignUpInput{Email: input.Email, Password: input.Password, FirstName: "Hoofdleiding"},
		account.PermissionAdmin, deps.AccountStore, deps.GenerateID, deps.Now)
	if err != nil {
		return false, err
	}

	slog.Info("auth_event", "event", "admin_seeded", "account_id", acct.ID, "email", acct.Email)
	return true, nil
}

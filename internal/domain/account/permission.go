package account

import (
	"context"
	"errors"
	"fmt"
)

// Permission is the access level stored on an account.
//
//	0 none   signed in, no dashboard access
//	1 read   view rosters, events and posts
//	2 edit   create, update, delete and mass edit
//	3 admin  edit plus settings and other users' permissions
type Permission int

const (
	PermissionNone Permission = iota
	PermissionRead
	PermissionEdit
	PermissionAdmin
)

// Valid reports whether p is one of the four known levels.
func (p Permission) Valid() bool {
	return p >= PermissionNone && p <= PermissionAdmin
}

// Allows reports whether p grants at least min.
func (p Permission) Allows(min Permission) bool {
	return p.Valid() && p >= min
}

func (p Permission) String() string {
	switch p {
	case PermissionNone:
		return "none"
	case PermissionRead:
		return "read"
	case PermissionEdit:
		return "edit"
	case PermissionAdmin:
		return "admin"
	}
	return fmt.Sprintf("permission(%d)", int(p))
}

// ParsePermission converts a form value ("0".."3") into a Permission.
func ParsePermission(s string) (Permission, error) {
	if len(s) != 1 || s[0] < '0' || s[0] > '3' {
		return PermissionNone, ErrInvalidPermission
	}
	return Permission(s[0] - '0'), nil
}

// ErrAccountNotFound is returned by PermissionLookup implementations when no
// profile row exists for the user.
var ErrAccountNotFound = errors.New("account not found")

// PermissionLookup reads the stored permission for a user.
type PermissionLookup interface {
	PermissionFor(ctx context.Context, userID string) (Permission, error)
}

// ResolvePermission returns the permission a session is allowed to act with.
// A missing profile resolves to PermissionNone rather than an error, so a user
// who signed up but was never granted access sees the "no access" page.
// PRE: userID is the id carried by an authenticated session
// POST: returned Permission is always Valid()
func ResolvePermission(ctx context.Context, lookup PermissionLookup, userID string) (Permission, error) {
	if userID == "" {
		return PermissionNone, nil
	}
	p, err := lookup.PermissionFor(ctx, userID)
	if errors.Is(err, ErrAccountNotFound) {
		return PermissionNone, nil
	}
	if err != nil {
		return PermissionNone, fmt.Errorf("resolve permission: %w", err)
	}
	if !p.Valid() {
		return PermissionNone, nil
	}
	return p, nil
}

package identity

import (
	"context"
	"errors"
)

// ErrNotFound indicates the identity provider has no record for the given user.
// Deletion workflows treat this as success to keep retries idempotent.
var ErrNotFound = errors.New("identity provider: user not found")

// Client defines the identity provider admin operations used by the
// deletion workflow and the membership condition provider.
type Client interface {
	// DeleteUser removes the identity record. Returns ErrNotFound when the
	// record is already gone.
	DeleteUser(ctx context.Context, userID string) error
	// DeactivateUser disables the identity record without removing it.
	DeactivateUser(ctx context.Context, userID string) error
	// GetUserRoles returns the realm role names assigned to the user.
	GetUserRoles(ctx context.Context, userID string) ([]string, error)
}

package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserChecker reports whether the account behind a token may still act.
// Tokens are stateless, so deactivating or deleting a user would otherwise
// leave their tokens valid until expiry.
type UserChecker interface {
	UserActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserCheckerFunc is a function adapter for UserChecker.
type UserCheckerFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f UserCheckerFunc) UserActive(ctx context.Context, id uuid.UUID) (bool, error) {
	return f(ctx, id)
}

// Package auth connects requests to the identities issued by the external
// auth service.  It does not register or log users in; it only verifies
// access tokens signed with the shared secret and carries the resulting
// profile id through request contexts.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when an operation needs a current user
// and none is attached to the context.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity reports the profile id of the actor behind a request.
type Identity interface {
	CurrentUser(ctx context.Context) (string, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying the given profile id.
func WithUser(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, userKey{}, profileID)
}

// ContextIdentity reads the profile id stored by WithUser.
type ContextIdentity struct{}

// CurrentUser returns the profile id in ctx or ErrUnauthenticated.
func (ContextIdentity) CurrentUser(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(userKey{}).(string); ok && id != "" {
		return id, nil
	}
	return "", ErrUnauthenticated
}

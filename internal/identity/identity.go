// Package identity abstracts the session collaborator. The engine reads a
// single field from it: the opaque identifier scoping every query.
package identity

import (
	"context"
	"errors"
)

// ErrNoUser is returned when no user is signed in.
var ErrNoUser = errors.New("no current user")

// Provider yields the current user's identifier.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Static is a fixed-identity provider, used by the CLI and the worker where
// the user is chosen by configuration.
type Static struct {
	UserID string
}

func (s Static) CurrentUserID(context.Context) (string, error) {
	if s.UserID == "" {
		return "", ErrNoUser
	}
	return s.UserID, nil
}

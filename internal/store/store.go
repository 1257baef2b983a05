// Package store persists user records in a document store. All default
// reads exclude deactivated users; callers never see soft-deleted records.
package store

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNotFound is returned when no active record matches.
var ErrNotFound = goerrors.New("resource not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrDuplicateEmail is returned when a write violates email uniqueness.
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict)

// UserUpdate carries the mutable profile fields. Nil means "leave as is".
// Password changes never go through Update; the session lifecycle owns them.
type UserUpdate struct {
	Name  *string
	Email *string
	Photo *string
	Role  *string
}

// Users is the credential store. Every read applies the active-only
// predicate; the refresh-token list is only ever written wholesale, which
// keeps each transition a single document write.
type Users interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	SetRefreshTokens(ctx context.Context, id string, tokens []string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

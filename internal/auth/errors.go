package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced alongside errors so clients can branch without
// parsing messages.
const (
	TextCodeInvalidCreds  = "INVALID_CREDENTIALS"
	TextCodeMissingToken  = "MISSING_TOKEN"
	TextCodeInvalidToken  = "INVALID_TOKEN"
	TextCodeTokenExpired  = "TOKEN_EXPIRED"
	TextCodeTokenReuse    = "TOKEN_REUSE"
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
)

// ErrNoEmptyString rejects hashing an empty password.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the generic credential failure. The same
// message covers unknown users and wrong passwords so responses do not leak
// which one failed.
var ErrMismatchedHashAndPassword = goerrors.New("incorrect email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingToken is returned when no bearer token accompanies the request.
var ErrMissingToken = goerrors.New("unauthorized access, please log in", goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken covers bad signatures, wrong secrets and garbled tokens.
var ErrInvalidToken = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for well-formed but expired access tokens.
var ErrTokenExpired = goerrors.New("token has expired, please log in again", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is returned when a verified token references no active
// user. Deliberately a 401, not a 404: the caller is unauthenticated.
var ErrUserNotFound = goerrors.New("user not found for this token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenReuse is returned when refresh rotation detects a replayed token.
// The user's whole refresh-token list has been revoked by the time callers
// see this error.
var ErrTokenReuse = goerrors.New("access denied, invalid credentials", goerrors.CategoryBadInput).
	WithTextCode(TextCodeTokenReuse).
	WithCode(goerrors.CodeBadRequest)

// ErrForbidden is returned by the role guard.
var ErrForbidden = goerrors.New("you do not have permission to perform this action", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden)

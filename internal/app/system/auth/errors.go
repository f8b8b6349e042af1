package auth

import "errors"

var (
	// ErrNoCredential means neither the token cookie nor a Bearer header was sent.
	ErrNoCredential = errors.New("auth: no credential")
	// ErrExpiredCredential means the token was correctly signed but has expired.
	ErrExpiredCredential = errors.New("auth: credential expired")
	// ErrInvalidCredential covers bad signatures, malformed claims and
	// principals that no longer exist in the collection named by the role.
	ErrInvalidCredential = errors.New("auth: invalid credential")
	// ErrPrincipalNotFound is returned by a Loader when no record has the id.
	ErrPrincipalNotFound = errors.New("auth: principal not found")
)

package auth

import (
	"errors"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/tokens"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/users"
)

// Errors returned by the Manager. Any other error is an unexpected store or
// infrastructure failure.
var (
	// ErrInvalidCredentials covers both an unknown login identifier and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired, wrong-type and revoked tokens alike.
	ErrInvalidToken    = tokens.ErrInvalidToken
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("user not found")
	ErrWeakPassword    = users.ErrWeakPassword
)

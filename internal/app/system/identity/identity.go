// Package identity verifies bearer credentials against the external
// identity provider and yields the verified subject.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredential is returned when the request carries no usable
	// bearer token. The identity provider is never contacted in this case.
	ErrMissingCredential = errors.New("missing bearer credential")

	// ErrInvalidCredential is returned when the identity provider rejects
	// the token or cannot be reached.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Subject is the identity recovered from a verified credential.
type Subject struct {
	UID   string
	Email string
}

// Verifier validates a raw credential and returns its subject.
type Verifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

// VerifierFunc adapts a plain function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) (Subject, error)

// Verify calls f(ctx, token).
func (f VerifierFunc) Verify(ctx context.Context, token string) (Subject, error) {
	return f(ctx, token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Anything else is ErrMissingCredential.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", ErrMissingCredential
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tok == "" {
		return "", ErrMissingCredential
	}
	return tok, nil
}

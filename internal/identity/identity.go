// Package identity resolves the operator on whose behalf write calls are made.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidID indicates an operator identifier is not an RFC 4122 UUID.
	ErrInvalidID = errors.New("invalid operator id")

	// ErrMissing indicates the provider has no operator.
	ErrMissing = errors.New("no operator identity available")
)

// Provider supplies the already-authenticated operator.
type Provider interface {
	// CurrentUserID returns the operator ID and whether one is available.
	CurrentUserID() (string, bool)
}

// Static is a Provider that always returns the same identifier.
// An empty Static reports no operator.
type Static string

func (s Static) CurrentUserID() (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() (string, bool)

func (f ProviderFunc) CurrentUserID() (string, bool) { return f() }

// Validate checks that id is a canonical UUID of version 1 through 5 with the
// RFC 4122 variant, which is what the services accept in X-User-Id.
func Validate(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if v := parsed.Version(); v < 1 || v > 5 {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidID, v)
	}
	if parsed.Variant() != uuid.RFC4122 {
		return fmt.Errorf("%w: unsupported variant", ErrInvalidID)
	}
	return nil
}

// Resolve returns the provider's operator after validating it.
func Resolve(p Provider) (string, error) {
	if p == nil {
		return "", ErrMissing
	}
	id, ok := p.CurrentUserID()
	if !ok {
		return "", ErrMissing
	}
	if err := Validate(id); err != nil {
		return "", err
	}
	return id, nil
}

// Package auth decides whether a credential may use the admin API.
//
// The site has a single operator, so authorization is a check of one
// configured secret. Authorizer keeps that check behind an interface so the
// HTTP gate does not change when the check does.
package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized is returned when a credential is missing or rejected.
var ErrUnauthorized = errors.New("unauthorized")

// Authorizer validates the credential presented with an admin request.
type Authorizer interface {
	Authorize(credential string) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(credential string) error

// Authorize calls f(credential).
func (f AuthorizerFunc) Authorize(credential string) error { return f(credential) }

// SharedSecret accepts exactly the configured secret.
// An empty secret disables the gate and every credential is accepted.
func SharedSecret(secret string) Authorizer {
	return AuthorizerFunc(func(credential string) error {
		if secret == "" {
			return nil
		}
		if credential == "" || subtle.ConstantTimeCompare([]byte(credential), []byte(secret)) != 1 {
			return ErrUnauthorized
		}
		return nil
	})
}

// AnyOf accepts a credential accepted by at least one of the authorizers.
func AnyOf(authorizers ...Authorizer) Authorizer {
	return AuthorizerFunc(func(credential string) error {
		for _, a := range authorizers {
			if a.Authorize(credential) == nil {
				return nil
			}
		}
		return ErrUnauthorized
	})
}

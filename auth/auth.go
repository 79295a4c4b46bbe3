// Package auth authenticates grid service callers with bearer tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

var (
	// ErrInvalidAuthHeader is returned when the authorization header is malformed.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned when the bearer token is missing or blank.
	ErrTokenIsEmpty = errors.New("authorization token is empty")

	// ErrUnauthenticated is returned when the authenticator rejects a token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// HeaderAuthorization is the gRPC metadata key carrying the bearer token.
const HeaderAuthorization = "authorization"

// Authenticator validates bearer tokens and returns the caller identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

// ViewAuthorizer is an optional interface an Authenticator can implement to
// restrict access to individual grid views. AuthorizeView is called after
// Authenticate with the identity already in ctx.
type ViewAuthorizer interface {
	AuthorizeView(ctx context.Context, view string) error
}

type noAuthenticator struct{}

// NoAuth returns an Authenticator that accepts every token as "anonymous".
// Intended for tests and local development.
func NoAuth() Authenticator {
	return noAuthenticator{}
}

func (noAuthenticator) Authenticate(context.Context, string) (string, error) {
	return "anonymous", nil
}

// AuthFunc adapts a plain validation function to Authenticator.
type AuthFunc func(token string) (identity string, err error)

// Authenticate implements Authenticator.
func (f AuthFunc) Authenticate(_ context.Context, token string) (string, error) {
	return f(token)
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	a := auth.BearerAuth(func(token string) (string, error) {
//	    if token != os.Getenv("GRID_TOKEN") {
//	        return "", errors.New("unknown token")
//	    }
//	    return "grid-client", nil
//	})
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return AuthFunc(validate)
}

type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity, or "" for
// unauthenticated requests.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

const bearerPrefix = "Bearer "

// TokenFromAuthorizationHeader extracts the token from a "Bearer <token>" value.
func TokenFromAuthorizationHeader(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// TokenFromContext extracts the bearer token from incoming gRPC metadata.
// A request without an authorization header yields ErrTokenIsEmpty.
func TokenFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrTokenIsEmpty
	}
	headers := md.Get(HeaderAuthorization)
	if len(headers) == 0 {
		return "", ErrTokenIsEmpty
	}
	return TokenFromAuthorizationHeader(headers[0])
}

// ValidateToken authenticates token and returns ctx with the identity set.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	if token == "" {
		return ctx, ErrTokenIsEmpty
	}
	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, ErrUnauthenticated
	}
	return WithIdentity(ctx, identity), nil
}

// AuthorizeView checks view access when authenticator implements
// ViewAuthorizer. Other authenticators allow every view.
func AuthorizeView(ctx context.Context, authenticator Authenticator, view string) error {
	va, ok := authenticator.(ViewAuthorizer)
	if !ok {
		return nil
	}
	return va.AuthorizeView(ctx, view)
}

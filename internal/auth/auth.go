package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingHeader  = errors.New("missing authorization header")
	ErrMissingToken   = errors.New("missing access token")
	ErrInvalidSession = errors.New("unable to load user session")
)

// User is the identity behind an access token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Resolver turns a bearer access token into a user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*User, error)
}

// BearerToken extracts the access token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	tok := strings.TrimSpace(strings.Replace(header, "Bearer ", "", 1))
	if tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}

// StaticResolver maps fixed tokens to users. Unknown tokens are rejected.
type StaticResolver map[string]*User

func (s StaticResolver) Resolve(ctx context.Context, token string) (*User, error) {
	if u, ok := s[token]; ok && u != nil && u.ID != "" {
		cp := *u
		return &cp, nil
	}
	return nil, ErrInvalidSession
}

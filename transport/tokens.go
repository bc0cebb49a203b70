package transport

import (
	"context"

	"github.com/MrEthical07/dashAuth/session"
)

// TokenStore reads and writes the persisted bearer token.
type TokenStore interface {
	Token(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
}

// StoreTokens keeps the bearer token under Key of a session.Store.
type StoreTokens struct {
	Store   session.Store
	Key     string
	TTLDays int
}

func (t StoreTokens) Token(ctx context.Context) (string, bool, error) {
	if t.Store == nil {
		return "", false, nil
	}
	return t.Store.Get(ctx, t.key())
}

// SetToken writes token, or removes the record when token is empty.
func (t StoreTokens) SetToken(ctx context.Context, token string) error {
	if t.Store == nil {
		return nil
	}
	if token == "" {
		return t.Store.Remove(ctx, t.key())
	}
	return t.Store.Set(ctx, t.key(), token, t.TTLDays)
}

func (t StoreTokens) key() string {
	if t.Key == "" {
		return "accessToken"
	}
	return t.Key
}

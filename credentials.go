package dashAuth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrEthical07/dashAuth/session"
	"github.com/MrEthical07/dashAuth/transport"
)

const (
	defaultTokenKey = "accessToken"
	defaultUserKey  = "user"
)

// Credentials is the persisted credential record: the bearer token and the
// cached user, both kept in one session.Store under their own keys with the
// same TTL. It satisfies transport.TokenStore.
type Credentials struct {
	tokens  transport.StoreTokens
	store   session.Store
	userKey string
	ttlDays int
}

// NewCredentials binds a credential record to store. Empty keys fall back to
// "accessToken" and "user".
func NewCredentials(store session.Store, tokenKey, userKey string, ttlDays int) *Credentials {
	if store == nil {
		store = session.NoopStore{}
	}
	if tokenKey == "" {
		tokenKey = defaultTokenKey
	}
	if userKey == "" {
		userKey = defaultUserKey
	}
	return &Credentials{
		tokens:  transport.StoreTokens{Store: store, Key: tokenKey, TTLDays: ttlDays},
		store:   store,
		userKey: userKey,
		ttlDays: ttlDays,
	}
}

func (c *Credentials) Token(ctx context.Context) (string, bool, error) {
	return c.tokens.Token(ctx)
}

// SetToken writes token; an empty token removes the record.
func (c *Credentials) SetToken(ctx context.Context, token string) error {
	return c.tokens.SetToken(ctx, token)
}

// User returns the cached user. A record that does not decode is reported as
// ErrCorruptUser together with ok == false.
func (c *Credentials) User(ctx context.Context) (*User, bool, error) {
	raw, ok, err := c.store.Get(ctx, c.userKey)
	if err != nil || !ok {
		return nil, false, err
	}
	u := &User{}
	if err := json.Unmarshal([]byte(raw), u); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	return u, true, nil
}

// SetUser caches u; nil removes the record.
func (c *Credentials) SetUser(ctx context.Context, u *User) error {
	if u == nil {
		return c.store.Remove(ctx, c.userKey)
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.userKey, string(raw), c.ttlDays)
}

// Save persists a freshly issued session, token first.
func (c *Credentials) Save(ctx context.Context, resp *AuthResponse) error {
	if resp == nil {
		return nil
	}
	if err := c.SetToken(ctx, resp.AccessToken); err != nil {
		return err
	}
	return c.SetUser(ctx, &resp.User)
}

// Clear removes both records. Both removals are attempted.
func (c *Credentials) Clear(ctx context.Context) error {
	return errors.Join(
		c.tokens.SetToken(ctx, ""),
		c.store.Remove(ctx, c.userKey),
	)
}

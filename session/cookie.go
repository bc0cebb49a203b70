package session

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CookieConfig controls the attributes of written cookies.
type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// DefaultCookieConfig matches the dashboard: whole-site path, strict same-site.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	}
}

// CookieStore persists records as cookies of a single HTTP exchange. Reads see
// writes made earlier in the same exchange, then fall back to the request.
// Values are URL-escaped so JSON survives the cookie value grammar.
type CookieStore struct {
	cfg   CookieConfig
	r     *http.Request
	w     http.ResponseWriter
	clock Clock

	mu      sync.Mutex
	pending map[string]*string
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, cfg CookieConfig) *CookieStore {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteStrictMode
	}
	return &CookieStore{
		cfg:     cfg,
		r:       r,
		w:       w,
		clock:   realClock{},
		pending: make(map[string]*string),
	}
}

func (s *CookieStore) Set(ctx context.Context, key, value string, ttlDays int) error {
	if err := validKey(key); err != nil {
		return err
	}

	c := s.cookie(key, url.QueryEscape(value))
	if ttl := TTL(ttlDays); ttl > 0 {
		c.Expires = s.clock.Now().Add(ttl).UTC()
		c.MaxAge = int(ttl / time.Second)
	}
	if s.w != nil {
		http.SetCookie(s.w, c)
	}

	s.mu.Lock()
	v := value
	s.pending[key] = &v
	s.mu.Unlock()
	return nil
}

func (s *CookieStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	v, written := s.pending[key]
	s.mu.Unlock()
	if written {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	if s.r == nil {
		return "", false, nil
	}
	c, err := s.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false, nil
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		// a foreign cookie under our name; treat it as absent
		return "", false, nil
	}
	return value, true, nil
}

func (s *CookieStore) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	c := s.cookie(key, "")
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	if s.w != nil {
		http.SetCookie(s.w, c)
	}

	s.mu.Lock()
	s.pending[key] = nil
	s.mu.Unlock()
	return nil
}

func (s *CookieStore) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.cfg.Path,
		Domain:   s.cfg.Domain,
		HttpOnly: s.cfg.HttpOnly,
		SameSite: s.cfg.SameSite,
		Secure:   s.cfg.Secure,
	}
}

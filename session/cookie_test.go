package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookieStoreWritesDashboardAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	s := NewCookieStore(rec, req, CookieConfig{Secure: true})
	s.clock = &fakeClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

	if err := s.Set(context.Background(), "user", `{"id":"1","email":"a@b.com"}`, 7); err != nil {
		t.Fatalf("set: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "user" || c.Path != "/" || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cookie attributes: %+v", c)
	}
	if c.MaxAge != 7*24*60*60 {
		t.Fatalf("expected 7 day max-age, got %d", c.MaxAge)
	}
	if !c.Expires.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected expiry %s", c.Expires)
	}
}

func TestCookieStoreRoundTripAcrossRequests(t *testing.T) {
	ctx := context.Background()
	value := `{"id":"1","name":"Ann Lee","email":"a@b.com"}`

	rec := httptest.NewRecorder()
	first := NewCookieStore(rec, httptest.NewRequest(http.MethodPost, "/signin", nil), DefaultCookieConfig())
	if err := first.Set(ctx, "user", value, 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, ok, _ := first.Get(ctx, "user"); !ok || got != value {
		t.Fatalf("expected read-your-write, got %q ok=%v", got, ok)
	}

	next := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	second := NewCookieStore(httptest.NewRecorder(), next, DefaultCookieConfig())
	got, ok, err := second.Get(ctx, "user")
	if err != nil || !ok || got != value {
		t.Fatalf("expected JSON to survive cookie encoding, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestCookieStoreRemoveExpiresCookieAndHidesRequestValue(t *testing.T) {
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})
	rec := httptest.NewRecorder()
	s := NewCookieStore(rec, req, DefaultCookieConfig())

	if got, ok, _ := s.Get(ctx, "accessToken"); !ok || got != "tok" {
		t.Fatalf("expected request cookie, got %q ok=%v", got, ok)
	}
	if err := s.Remove(ctx, "accessToken"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "accessToken"); ok {
		t.Fatal("expected removed cookie to read as absent in the same exchange")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestCookieStoreNilRequestReadsAbsent(t *testing.T) {
	s := NewCookieStore(nil, nil, CookieConfig{})
	if _, ok, err := s.Get(context.Background(), "accessToken"); ok || err != nil {
		t.Fatalf("expected absent, ok=%v err=%v", ok, err)
	}
}

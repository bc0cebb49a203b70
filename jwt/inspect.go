package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Inspect when the token is opaque.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the client-visible subset of an access token. The client never
// holds a verification key, so these values are advisory only.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes a JWT without verifying its signature. Opaque bearer
// strings yield ErrNotJWT.
func Inspect(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &accessClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}

	out := &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether token carries an exp claim that has passed at now,
// allowing leeway. known is false for opaque tokens and tokens without exp,
// in which case expired is always false.
func Expired(token string, now time.Time, leeway time.Duration) (expired, known bool) {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false, false
	}
	return !now.Before(claims.ExpiresAt.Add(leeway)), true
}

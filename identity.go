package dashAuth

import "context"

// IdentityTokenProvider obtains an external identity token (a Google ID
// token on the web) from whatever platform flow the host uses. The Engine
// only ever consumes the resolved token.
type IdentityTokenProvider interface {
	RequestIdentityToken(ctx context.Context) (string, error)
}

// IdentityTokenFunc adapts a function to IdentityTokenProvider.
type IdentityTokenFunc func(ctx context.Context) (string, error)

func (f IdentityTokenFunc) RequestIdentityToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticIdentityToken always resolves to the same token. Useful for CLIs
// that receive the token as an argument.
type StaticIdentityToken string

func (t StaticIdentityToken) RequestIdentityToken(context.Context) (string, error) {
	return string(t), nil
}

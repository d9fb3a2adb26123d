package ideas

import "context"

// AuthRequiredMessage is published in place of content when no token is
// available.
const AuthRequiredMessage = "Authentication required"

// TokenSource supplies the bearer token for a streaming attempt. An empty
// token with a nil error means the user is not authenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// FirstToken returns a TokenSource that asks each source in order and
// returns the first non-empty token. Errors stop the search.
func FirstToken(sources ...TokenSource) TokenSource {
	return TokenFunc(func(ctx context.Context) (string, error) {
		for _, s := range sources {
			if s == nil {
				continue
			}
			tok, err := s.Token(ctx)
			if err != nil {
				return "", err
			}
			if tok != "" {
				return tok, nil
			}
		}
		return "", nil
	})
}

// Gate decides whether the user may see generated content or must see an
// upgrade prompt. The decision is made by an external entitlement service;
// implementations only read it.
type Gate interface {
	Entitled(ctx context.Context) (bool, error)
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context) (bool, error)

// Entitled calls f.
func (f GateFunc) Entitled(ctx context.Context) (bool, error) { return f(ctx) }

// AllowAll is a Gate that entitles everyone.
var AllowAll Gate = GateFunc(func(context.Context) (bool, error) { return true, nil })

// Interface compliance checks.
var (
	_ TokenSource = TokenFunc(nil)
	_ TokenSource = StaticToken("")
	_ Gate        = GateFunc(nil)
)

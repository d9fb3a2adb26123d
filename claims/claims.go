// Package claims implements ideas.Gate by reading the subscription plan from
// the claims of the bearer JWT. An opaque token that is not a JWT carries
// no plan to read, so the gate lets it through and the endpoint decides.
//
// Signatures are not verified here. The streaming endpoint verifies the
// token on every request; the gate only decides which view to show.
package claims

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fwojciec/ideas"
	"github.com/golang-jwt/jwt/v5"
)

// Defaults for the plan lookup.
const (
	DefaultClaim = "plan"
	DefaultPlan  = "premium"
)

var _ ideas.Gate = (*Gate)(nil)

// Gate grants entitlement when the token's plan claim names an allowed plan.
type Gate struct {
	tokens ideas.TokenSource
	claim  string
	plans  []string
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Gate.
type Option func(*Gate)

// WithClaim sets the claim holding the plan. The claim may be a string or a
// list of strings.
func WithClaim(name string) Option {
	return func(g *Gate) { g.claim = name }
}

// WithPlans sets the plans that grant entitlement.
func WithPlans(plans ...string) Option {
	return func(g *Gate) { g.plans = plans }
}

// WithClock overrides the time used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New creates a Gate reading tokens from tokens.
func New(tokens ideas.TokenSource, opts ...Option) *Gate {
	g := &Gate{
		tokens: tokens,
		claim:  DefaultClaim,
		plans:  []string{DefaultPlan},
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Entitled reports whether the current token carries an allowed plan. A
// missing or expired token returns ideas.ErrAuthRequired. A token that does
// not parse as a JWT is entitled.
func (g *Gate) Entitled(ctx context.Context) (bool, error) {
	tok, err := g.tokens.Token(ctx)
	if err != nil {
		return false, fmt.Errorf("claims: token: %w", err)
	}
	if tok == "" {
		return false, ideas.ErrAuthRequired
	}

	c := jwt.MapClaims{}
	if _, _, err := g.parser.ParseUnverified(tok, c); err != nil {
		return true, nil
	}

	exp, err := c.GetExpirationTime()
	if err != nil {
		return false, fmt.Errorf("claims: exp: %w: %w", ideas.ErrAuthRequired, err)
	}
	if exp != nil && !g.now().Before(exp.Time) {
		return false, fmt.Errorf("claims: token expired: %w", ideas.ErrAuthRequired)
	}

	return slices.ContainsFunc(planValues(c[g.claim]), func(p string) bool {
		return slices.Contains(g.plans, p)
	}), nil
}

func planValues(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

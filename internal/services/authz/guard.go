package authz

import (
	"context"
	"errors"

	"github.com/mcoot/tabletag-go/internal/services/identity"
)

// ErrForbidden is returned for every authorization failure. Unknown tokens
// and insufficient scopes are deliberately indistinguishable to the caller,
// so failures never leak whether a resource or identity exists.
var ErrForbidden = errors.New("forbidden")

// Tier is the access level a route demands
type Tier int

const (
	// TierPublic requires no session at all
	TierPublic Tier = iota
	// TierAuthorized requires a session holding any scope
	TierAuthorized
	// TierAdmin requires a session holding the admin scope
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierPublic:
		return "public"
	case TierAuthorized:
		return "authorized"
	case TierAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Guard resolves tokens and enforces tier requirements
type Guard struct {
	identity *identity.Service
}

// NewGuard creates a guard backed by the given identity service
func NewGuard(identityService *identity.Service) *Guard {
	return &Guard{identity: identityService}
}

// Check resolves the token and enforces the tier. It returns the resolved
// session (nil for anonymous callers on public routes) or ErrForbidden.
func (g *Guard) Check(ctx context.Context, token string, tier Tier) (*identity.Session, error) {
	session, err := g.identity.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	switch tier {
	case TierPublic:
		return session, nil
	case TierAuthorized:
		if session == nil || session.Scope == nil {
			return nil, ErrForbidden
		}
		return session, nil
	case TierAdmin:
		if session == nil || session.Scope == nil || !session.Scope.IsAdmin() {
			return nil, ErrForbidden
		}
		return session, nil
	default:
		return nil, ErrForbidden
	}
}

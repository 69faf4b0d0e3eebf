package service

import (
	"fmt"
	"strings"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

// Authorize decides whether the session may render rule. It has no side
// effects and must be evaluated on every navigation.
func Authorize(s domain.Snapshot, rule domain.RouteRule) domain.Decision {
	switch {
	case s.Loading:
		return domain.Decision{Outcome: domain.OutcomeLoading}
	case s.User == nil:
		return domain.Decision{Outcome: domain.OutcomeRedirect, Target: domain.PathLogin}
	case rule.Allows(s.User.Rol):
		return domain.Decision{Outcome: domain.OutcomeAllow}
	default:
		return domain.Decision{Outcome: domain.OutcomeRedirect, Target: domain.FallbackPath(s.User.Rol)}
	}
}

// RouteTable is a validated, read-only set of route rules.
type RouteTable struct {
	rules  []domain.RouteRule
	byPath map[string]int
}

// NewRouteTable validates rules and indexes them by path.
func NewRouteTable(rules []domain.RouteRule) (*RouteTable, error) {
	if err := ValidateRouteTable(rules); err != nil {
		return nil, err
	}
	t := &RouteTable{
		rules:  make([]domain.RouteRule, len(rules)),
		byPath: make(map[string]int, len(rules)),
	}
	copy(t.rules, rules)
	for i, r := range t.rules {
		t.byPath[r.Path] = i
	}
	return t, nil
}

// ValidateRouteTable rejects a table in which a role's fallback route is
// missing or denies that role, which would produce a redirect loop.
func ValidateRouteTable(rules []domain.RouteRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: no routes", domain.ErrInvalidRouteTable)
	}

	byPath := make(map[string]domain.RouteRule, len(rules))
	for _, r := range rules {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("%w: path %q must start with /", domain.ErrInvalidRouteTable, r.Path)
		}
		if r.Path == domain.PathLogin {
			return fmt.Errorf("%w: %s is public and cannot be gated", domain.ErrInvalidRouteTable, r.Path)
		}
		if _, dup := byPath[r.Path]; dup {
			return fmt.Errorf("%w: duplicate path %s", domain.ErrInvalidRouteTable, r.Path)
		}
		for _, role := range r.Roles {
			if !role.Valid() {
				return fmt.Errorf("%w: path %s lists unknown role %q", domain.ErrInvalidRouteTable, r.Path, role)
			}
		}
		byPath[r.Path] = r
	}

	for _, role := range domain.Roles {
		target := domain.FallbackPath(role)
		fallback, ok := byPath[target]
		if !ok {
			return fmt.Errorf("%w: fallback %s for %s is not a route", domain.ErrInvalidRouteTable, target, role)
		}
		if !fallback.Allows(role) {
			return fmt.Errorf("%w: fallback %s denies %s", domain.ErrInvalidRouteTable, target, role)
		}
	}
	return nil
}

// Lookup returns the rule registered for path.
func (t *RouteTable) Lookup(path string) (domain.RouteRule, bool) {
	i, ok := t.byPath[path]
	if !ok {
		return domain.RouteRule{}, false
	}
	return t.rules[i], true
}

// Rules returns the rules in declaration order.
func (t *RouteTable) Rules() []domain.RouteRule {
	out := make([]domain.RouteRule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Navigation returns the sidebar entries the session may open.
func (t *RouteTable) Navigation(s domain.Snapshot) []domain.RouteRule {
	var out []domain.RouteRule
	for _, r := range t.rules {
		if r.Nav && Authorize(s, r).Outcome == domain.OutcomeAllow {
			out = append(out, r)
		}
	}
	return out
}

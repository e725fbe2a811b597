package domain

import "strings"

// ScopeKind discriminates the access tiers a knowledge entry can carry.
type ScopeKind string

const (
	ScopeKindPublic  ScopeKind = "public"
	ScopeKindMembers ScopeKind = "members"
	ScopeKindRole    ScopeKind = "role"
)

// Scope is an access tag restricting which callers may retrieve an entry.
// It is a tagged variant: public, members, or role:<name>. The string form
// only appears at the store and API boundaries.
type Scope struct {
	Kind ScopeKind
	Role string
}

var (
	ScopePublic  = Scope{Kind: ScopeKindPublic}
	ScopeMembers = Scope{Kind: ScopeKindMembers}
)

// RoleScope returns the scope restricting entries to holders of the given role.
func RoleScope(name string) Scope {
	return Scope{Kind: ScopeKindRole, Role: name}
}

const roleScopePrefix = "role:"

// ParseScope parses the stored string form of a scope.
func ParseScope(s string) (Scope, error) {
	switch {
	case s == string(ScopeKindPublic):
		return ScopePublic, nil
	case s == string(ScopeKindMembers):
		return ScopeMembers, nil
	case strings.HasPrefix(s, roleScopePrefix):
		role := strings.TrimPrefix(s, roleScopePrefix)
		if role == "" {
			return Scope{}, ErrInvalidScope
		}
		return RoleScope(role), nil
	default:
		return Scope{}, ErrInvalidScope
	}
}

// String formats the scope for storage and transport.
func (s Scope) String() string {
	if s.Kind == ScopeKindRole {
		return roleScopePrefix + s.Role
	}
	return string(s.Kind)
}

// ScopeStrings formats a scope set for use as a query parameter.
func ScopeStrings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = s.String()
	}
	return out
}

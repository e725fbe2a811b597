package service

import "github.com/kraft-solutions/kraftchat/internal/domain"

// ResolveScopes maps a caller identity to the ordered set of scopes it may
// read: guests see only public entries; authenticated users additionally
// see members entries plus one role scope per role they hold. It has no
// side effects and always returns at least the public scope.
func ResolveScopes(identity domain.Identity) []domain.Scope {
	scopes := []domain.Scope{domain.ScopePublic}
	if !identity.Authenticated {
		return scopes
	}

	scopes = append(scopes, domain.ScopeMembers)
	for _, role := range identity.Roles {
		if role == "" {
			continue
		}
		scopes = append(scopes, domain.RoleScope(role))
	}
	return scopes
}

package domain

// Identity is the resolved caller identity supplied by the identity
// provider. The core never authenticates; it only consumes this.
type Identity struct {
	Authenticated bool
	UserID        string
	Roles         []string
}

// Guest is the identity of an unauthenticated caller.
var Guest = Identity{}

// HasRole reports whether the identity carries the given role.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RateLimitKey derives the quota identifier for this caller. Authenticated
// users are keyed by user id; guests share a per-address quota.
func (id Identity) RateLimitKey(remoteIP string) string {
	if id.Authenticated {
		return "user:" + id.UserID
	}
	if remoteIP == "" {
		remoteIP = "unknown"
	}
	return "ip:" + remoteIP
}

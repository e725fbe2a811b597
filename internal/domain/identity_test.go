package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityHasRole(t *testing.T) {
	id := Identity{Authenticated: true, UserID: "u1", Roles: []string{"member", "admin"}}

	assert.True(t, id.HasRole("admin"))
	assert.True(t, id.HasRole("member"))
	assert.False(t, id.HasRole("vorstand"))
	assert.False(t, Guest.HasRole("admin"))
}

func TestIdentityRateLimitKey(t *testing.T) {
	t.Run("authenticated users are keyed by user id", func(t *testing.T) {
		id := Identity{Authenticated: true, UserID: "42"}
		assert.Equal(t, "user:42", id.RateLimitKey("203.0.113.7"))
	})

	t.Run("guests are keyed by address", func(t *testing.T) {
		assert.Equal(t, "ip:203.0.113.7", Guest.RateLimitKey("203.0.113.7"))
	})

	t.Run("missing address falls back to a shared bucket", func(t *testing.T) {
		assert.Equal(t, "ip:unknown", Guest.RateLimitKey(""))
	})
}

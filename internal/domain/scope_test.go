package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	t.Run("parses public", func(t *testing.T) {
		scope, err := ParseScope("public")
		require.NoError(t, err)
		assert.Equal(t, ScopePublic, scope)
	})

	t.Run("parses members", func(t *testing.T) {
		scope, err := ParseScope("members")
		require.NoError(t, err)
		assert.Equal(t, ScopeMembers, scope)
	})

	t.Run("parses role scope", func(t *testing.T) {
		scope, err := ParseScope("role:vorstand")
		require.NoError(t, err)
		assert.Equal(t, ScopeKindRole, scope.Kind)
		assert.Equal(t, "vorstand", scope.Role)
	})

	t.Run("rejects empty role name", func(t *testing.T) {
		_, err := ParseScope("role:")
		assert.ErrorIs(t, err, ErrInvalidScope)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		for _, s := range []string{"", "internal", "Public", "role"} {
			_, err := ParseScope(s)
			assert.ErrorIs(t, err, ErrInvalidScope, "input %q", s)
		}
	})
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "public", ScopePublic.String())
	assert.Equal(t, "members", ScopeMembers.String())
	assert.Equal(t, "role:trainer", RoleScope("trainer").String())
}

func TestScopeStringRoundTrip(t *testing.T) {
	for _, scope := range []Scope{ScopePublic, ScopeMembers, RoleScope("kassier")} {
		parsed, err := ParseScope(scope.String())
		require.NoError(t, err)
		assert.Equal(t, scope, parsed)
	}
}

func TestScopeStrings(t *testing.T) {
	got := ScopeStrings([]Scope{ScopePublic, ScopeMembers, RoleScope("admin")})
	assert.Equal(t, []string{"public", "members", "role:admin"}, got)
}

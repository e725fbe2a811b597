package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashQuery(t *testing.T) {
	t.Run("produces a 64 character hex digest", func(t *testing.T) {
		hash := HashQuery("Wie gründe ich einen Verein?")
		assert.Len(t, hash, 64)
		assert.Regexp(t, "^[0-9a-f]{64}$", hash)
	})

	t.Run("normalizes case and surrounding whitespace", func(t *testing.T) {
		base := HashQuery("wie wird man mitglied?")
		assert.Equal(t, base, HashQuery("Wie wird man Mitglied?"))
		assert.Equal(t, base, HashQuery("  wie wird man mitglied?  "))
	})

	t.Run("distinct queries hash differently", func(t *testing.T) {
		assert.NotEqual(t, HashQuery("beiträge"), HashQuery("satzung"))
	})
}

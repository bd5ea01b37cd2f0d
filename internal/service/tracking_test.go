package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTrackingID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := generateTrackingID()
		require.NoError(t, err)

		assert.Len(t, id, trackingIDLength)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(trackingIDCharset, r), "unexpected character %q in %s", r, id)
		}
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190, "ids should be effectively unique")
}

func TestGenerateTrackingIDOmitsAmbiguousCharacters(t *testing.T) {
	for _, forbidden := range "01IO" {
		assert.False(t, strings.ContainsRune(trackingIDCharset, forbidden))
	}
}

func TestNewTrackingIDRetriesUntilUnique(t *testing.T) {
	env := newTestEnv()
	env.store.existsQueue = []bool{true, false}

	id, err := env.svc.newTrackingID()
	require.NoError(t, err)
	assert.Regexp(t, trackingIDFormat, id)
	assert.Empty(t, env.store.existsQueue)
}

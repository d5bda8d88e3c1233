package license_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcore/internal/license"
)

var humanKeyPattern = regexp.MustCompile(`^LFT(-[0-9A-F]{4}){4}$`)

func TestHumanKeyFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		key, err := license.NewHumanKey()
		require.NoError(t, err)
		assert.Regexp(t, humanKeyPattern, key)
	}
}

func TestHumanKeySpread(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key, err := license.NewHumanKey()
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

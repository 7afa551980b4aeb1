package randid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]*$`)

	for _, n := range []int{-1, 0, 1, 8, 16} {
		got := Generate(n)
		assert.Len(t, got, max(n, 0))
		assert.Regexp(t, pattern, got)
	}
}

func TestGenerate_unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		seen[Generate(8)] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(seen), 99)
}

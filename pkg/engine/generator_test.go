package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

func TestRequestGeneratorDeterministic(t *testing.T) {
	a := NewRequestGenerator(42)
	b := NewRequestGenerator(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestRequestGeneratorSeedMatters(t *testing.T) {
	a := NewRequestGenerator(1)
	b := NewRequestGenerator(2)

	var differed bool
	for i := 0; i < 20; i++ {
		if a.Next() != b.Next() {
			differed = true
			break
		}
	}
	assert.True(t, differed, "different seeds should produce different streams")
}

func TestRequestGeneratorShape(t *testing.T) {
	g := NewRequestGenerator(7)

	for i := 0; i < 200; i++ {
		request := g.Next()
		require.NotEmpty(t, request)

		// Every generated request carries a weight+unit pair the
		// extractor can find.
		_, unit, ok := shipping.ExtractWeight(request)
		require.True(t, ok, request)
		assert.NotEmpty(t, unit, request)

		// And mentions some destination from the pools.
		lower := strings.ToLower(request)
		var hasDest bool
		for _, dest := range append(append([]string{}, baseDests...), edgeDests...) {
			if strings.Contains(lower, strings.ToLower(dest)) {
				hasDest = true
				break
			}
		}
		assert.True(t, hasDest, request)
	}
}

package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	t.Parallel()

	g := rect(0, 0, 10, 10)
	assert.True(t, Contains(g, 5, 5))
	assert.False(t, Contains(g, 15, 5))
	assert.False(t, Contains(g, -1, -1))
}

func TestCentroid(t *testing.T) {
	t.Parallel()

	x, y := Centroid(rect(0, 0, 10, 20))
	assert.InDelta(t, 5, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	minX, minY, maxX, maxY := Bounds(rect(2, 3, 8, 9))
	assert.InDelta(t, 2, minX, 1e-9)
	assert.InDelta(t, 3, minY, 1e-9)
	assert.InDelta(t, 8, maxX, 1e-9)
	assert.InDelta(t, 9, maxY, 1e-9)
}

package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func squareBoundary() orb.Polygon {
	return orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
}

func TestPartitionServiceAreas(t *testing.T) {
	a := ServiceSite{ID: uuid.New(), Location: orb.Point{2, 5}, Weight: 300}
	b := ServiceSite{ID: uuid.New(), Location: orb.Point{8, 5}, Weight: 100}

	out := PartitionServiceAreas(squareBoundary(), []ServiceSite{a, b}, 30)

	assert.Len(t, out, 2)
	assert.NotNil(t, out[a.ID])
	assert.NotNil(t, out[b.ID])

	for _, poly := range out {
		ring := poly[0]
		assert.GreaterOrEqual(t, len(ring), 4)
		assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")
		for _, pt := range ring {
			assert.GreaterOrEqual(t, pt[0], -1.0)
			assert.LessOrEqual(t, pt[0], 11.0)
			assert.GreaterOrEqual(t, pt[1], -1.0)
			assert.LessOrEqual(t, pt[1], 11.0)
		}
	}
}

func TestPartitionZeroWeightSiteGetsNothing(t *testing.T) {
	working := ServiceSite{ID: uuid.New(), Location: orb.Point{3, 5}, Weight: 500}
	broken := ServiceSite{ID: uuid.New(), Location: orb.Point{7, 5}, Weight: 0}

	out := PartitionServiceAreas(squareBoundary(), []ServiceSite{working, broken}, 30)

	assert.NotNil(t, out[working.ID])
	assert.Nil(t, out[broken.ID])
}

func TestPartitionEmptyInputs(t *testing.T) {
	out := PartitionServiceAreas(squareBoundary(), nil, 30)
	assert.Empty(t, out)

	site := ServiceSite{ID: uuid.New(), Location: orb.Point{1, 1}, Weight: 10}
	out = PartitionServiceAreas(orb.Polygon{}, []ServiceSite{site}, 30)
	assert.Nil(t, out[site.ID])
}

func TestPartitionAllZeroWeights(t *testing.T) {
	a := ServiceSite{ID: uuid.New(), Location: orb.Point{2, 2}, Weight: 0}
	b := ServiceSite{ID: uuid.New(), Location: orb.Point{8, 8}, Weight: 0}

	out := PartitionServiceAreas(squareBoundary(), []ServiceSite{a, b}, 20)
	assert.Nil(t, out[a.ID])
	assert.Nil(t, out[b.ID])
}

func TestConvexHull(t *testing.T) {
	pts := []orb.Point{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 3}, {7, 2}, // interior points
	}
	hull := convexHull(pts)
	assert.Len(t, hull, 4)
	for _, corner := range []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}} {
		assert.Contains(t, hull, corner)
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	two := []orb.Point{{0, 0}, {1, 1}}
	assert.Equal(t, two, convexHull(two))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(30.0, 31.0, 30.0, 31.0))
}

func TestDistanceKmSymmetric(t *testing.T) {
	d1 := DistanceKm(30.00, 31.00, 30.01, 31.01)
	d2 := DistanceKm(30.01, 31.01, 30.00, 31.00)
	assert.InDelta(t, d1, d2, 1e-12)
}

func TestDistanceKmKnownValues(t *testing.T) {
	// Roughly 1.5 km between points 0.01 degrees apart near 30N
	d := DistanceKm(30.00, 31.00, 30.01, 31.01)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 2.0)

	// Cairo to Alexandria is about 180 km
	d = DistanceKm(30.0444, 31.2357, 31.2001, 29.9187)
	assert.InDelta(t, 180, d, 10)
}

func TestDistanceKmCutoffBoundary(t *testing.T) {
	// One degree of latitude is ~111 km, well outside the 20 km search radius
	d := DistanceKm(30.0, 31.0, 31.0, 31.0)
	assert.Greater(t, d, 100.0)
}

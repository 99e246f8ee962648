package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{
		SW: Coordinate{Lat: 35.0, Lng: 128.0},
		NE: Coordinate{Lat: 35.2, Lng: 128.2},
	}

	assert.True(t, b.Contains(Coordinate{Lat: 35.1, Lng: 128.1}))
	assert.False(t, b.Contains(Coordinate{Lat: 35.3, Lng: 128.1}))
	assert.False(t, b.Contains(Coordinate{Lat: 35.1, Lng: 127.9}))
}

// Both corners are treated as plain values on both axes. The upper longitude
// bound in particular must filter exactly like the other three edges.
func TestBoundsContainsIsInclusiveOnAllEdges(t *testing.T) {
	b := Bounds{
		SW: Coordinate{Lat: 35.0, Lng: 128.0},
		NE: Coordinate{Lat: 35.2, Lng: 128.2},
	}

	assert.True(t, b.Contains(Coordinate{Lat: 35.0, Lng: 128.1}), "south edge")
	assert.True(t, b.Contains(Coordinate{Lat: 35.2, Lng: 128.1}), "north edge")
	assert.True(t, b.Contains(Coordinate{Lat: 35.1, Lng: 128.0}), "west edge")
	assert.True(t, b.Contains(Coordinate{Lat: 35.1, Lng: 128.2}), "east edge")

	assert.False(t, b.Contains(Coordinate{Lat: 35.1, Lng: 128.2000001}), "just past the east edge")
}

func TestBoundsValid(t *testing.T) {
	assert.True(t, Bounds{
		SW: Coordinate{Lat: 35.0, Lng: 128.0},
		NE: Coordinate{Lat: 35.2, Lng: 128.2},
	}.Valid())

	assert.False(t, Bounds{
		SW: Coordinate{Lat: 35.2, Lng: 128.0},
		NE: Coordinate{Lat: 35.0, Lng: 128.2},
	}.Valid(), "inverted latitude")
}

func TestServiceRegion(t *testing.T) {
	assert.True(t, ServiceRegion.Contains(Coordinate{Lat: 35.10, Lng: 129.00}), "Busan")
	assert.True(t, ServiceRegion.Contains(Coordinate{Lat: 37.56, Lng: 126.97}), "Seoul")
	assert.False(t, ServiceRegion.Contains(Coordinate{Lat: 35.68, Lng: 139.69}), "Tokyo")
}

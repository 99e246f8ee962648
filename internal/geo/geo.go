package geo

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the rectangle between a southwest and a northeast corner, the
// shape a map viewport reports after a pan or zoom settles.
type Bounds struct {
	SW Coordinate `json:"sw"`
	NE Coordinate `json:"ne"`
}

// Contains reports whether c lies inside b. Both corners are plain values
// and both axes are inclusive.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.SW.Lat && c.Lat <= b.NE.Lat &&
		c.Lng >= b.SW.Lng && c.Lng <= b.NE.Lng
}

// Valid reports whether the southwest corner actually sits southwest of the
// northeast corner.
func (b Bounds) Valid() bool {
	return b.SW.Lat <= b.NE.Lat && b.SW.Lng <= b.NE.Lng
}

// ServiceRegion is the area reports are accepted from (South Korea). Clicks
// outside of it are rejected before any storage work happens.
var ServiceRegion = Bounds{
	SW: Coordinate{Lat: 33.0, Lng: 124.0},
	NE: Coordinate{Lat: 38.6, Lng: 132.0},
}

package params

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ppangmap/internal/geo"
)

// URL: /carts?sw_lat=35.0&sw_lng=128.0&ne_lat=35.2&ne_lng=128.2
// → ParseBounds() → geo.Bounds
// → SQL: ... WHERE lat BETWEEN sw_lat AND ne_lat AND lng BETWEEN sw_lng AND ne_lng
// The four keys travel together: none present means "no viewport yet"
// (first paint, fetch everything), a partial set is a client bug.

var ErrPartialBounds = errors.New("all four viewport parameters are required together")

// ParseBounds reads the viewport rectangle from query parameters. Returns
// (nil, nil) when no viewport keys are present at all.
func ParseBounds(q url.Values) (*geo.Bounds, error) {
	keys := []string{"sw_lat", "sw_lng", "ne_lat", "ne_lng"}

	present := 0
	for _, k := range keys {
		if strings.TrimSpace(q.Get(k)) != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(keys) {
		return nil, ErrPartialBounds
	}

	vals := make([]float64, len(keys))
	for i, k := range keys {
		v, err := strconv.ParseFloat(strings.TrimSpace(q.Get(k)), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", k, q.Get(k))
		}
		vals[i] = v
	}

	b := geo.Bounds{
		SW: geo.Coordinate{Lat: vals[0], Lng: vals[1]},
		NE: geo.Coordinate{Lat: vals[2], Lng: vals[3]},
	}
	if !b.Valid() {
		return nil, errors.New("southwest corner must be south and west of northeast corner")
	}
	return &b, nil
}

package utils

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

// ValidateCoordinate checks a latitude/longitude pair against WGS 84 ranges.
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", lon)
	}
	return nil
}

// ValidatePolygon checks that a polygon has an outer ring of at least 3
// distinct vertices, all inside coordinate ranges. An unclosed ring is
// accepted; CloseRing fixes it up before storage.
func ValidatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return errors.New("polygon has no rings")
	}
	ring := p[0]
	distinct := len(ring)
	if distinct > 1 && ring[0] == ring[len(ring)-1] {
		distinct--
	}
	if distinct < 3 {
		return errors.New("polygon must have at least 3 coordinates")
	}
	for i, pt := range ring {
		if err := ValidateCoordinate(pt.Lat(), pt.Lon()); err != nil {
			return fmt.Errorf("invalid coordinate at index %d: %w", i, err)
		}
	}
	return nil
}

// CloseRing returns the polygon with its outer ring closed, copying so
// the caller's slice is untouched.
func CloseRing(p orb.Polygon) orb.Polygon {
	if len(p) == 0 || len(p[0]) == 0 {
		return p
	}
	ring := p[0]
	if ring[0] == ring[len(ring)-1] {
		return p
	}
	closed := make(orb.Ring, len(ring)+1)
	copy(closed, ring)
	closed[len(ring)] = ring[0]
	out := make(orb.Polygon, len(p))
	copy(out, p)
	out[0] = closed
	return out
}

// PointInPolygon reports whether the point falls inside the polygon.
func PointInPolygon(pt orb.Point, p orb.Polygon) bool {
	return planar.PolygonContains(p, pt)
}

// Centroid returns the area-weighted center of the polygon.
func Centroid(p orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(p)
	return c
}

// ParsePolygonWKT parses a POLYGON literal, with or without an SRID=4326;
// prefix, as PostGIS emits and accepts them.
func ParsePolygonWKT(s string) (orb.Polygon, error) {
	g, err := wkt.Unmarshal(trimSRID(s))
	if err != nil {
		return nil, fmt.Errorf("invalid polygon WKT: %w", err)
	}
	p, ok := g.(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("expected POLYGON, got %s", g.GeoJSONType())
	}
	return p, nil
}

// ParsePointWKT parses a POINT literal.
func ParsePointWKT(s string) (orb.Point, error) {
	g, err := wkt.Unmarshal(trimSRID(s))
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid point WKT: %w", err)
	}
	p, ok := g.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("expected POINT, got %s", g.GeoJSONType())
	}
	return p, nil
}

// MarshalWKT renders a geometry as an SRID-prefixed WKT literal.
func MarshalWKT(g orb.Geometry) string {
	return "SRID=4326;" + wkt.MarshalString(g)
}

func trimSRID(s string) string {
	if len(s) > 5 && (s[:5] == "SRID=" || s[:5] == "srid=") {
		for i := 5; i < len(s); i++ {
			if s[i] == ';' {
				return s[i+1:]
			}
		}
	}
	return s
}

package utils

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestValidateCoordinate(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 30.27, -97.74, false},
		{"equator meridian", 0, 0, false},
		{"lat too high", 90.1, 0, true},
		{"lat too low", -91, 0, true},
		{"lon too high", 0, 180.5, true},
		{"lon too low", 0, -181, true},
		{"boundary values", 90, -180, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCoordinate(tc.lat, tc.lon)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePolygon(t *testing.T) {
	valid := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	assert.NoError(t, ValidatePolygon(valid))

	unclosed := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}}}
	assert.NoError(t, ValidatePolygon(unclosed))

	assert.Error(t, ValidatePolygon(orb.Polygon{}))
	assert.Error(t, ValidatePolygon(orb.Polygon{{{0, 0}, {1, 1}}}))
	// closed ring with only 2 distinct points
	assert.Error(t, ValidatePolygon(orb.Polygon{{{0, 0}, {1, 1}, {0, 0}}}))
	// out of range vertex
	assert.Error(t, ValidatePolygon(orb.Polygon{{{0, 0}, {200, 0}, {1, 1}, {0, 0}}}))
}

func TestCloseRing(t *testing.T) {
	open := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}}}
	closed := CloseRing(open)
	assert.Len(t, closed[0], 4)
	assert.Equal(t, closed[0][0], closed[0][3])
	// caller's slice untouched
	assert.Len(t, open[0], 3)

	already := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	assert.Equal(t, already, CloseRing(already))
}

func TestPointInPolygon(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	assert.True(t, PointInPolygon(orb.Point{5, 5}, square))
	assert.False(t, PointInPolygon(orb.Point{15, 5}, square))
}

func TestParsePointWKT(t *testing.T) {
	pt, err := ParsePointWKT("POINT(-97.74 30.27)")
	assert.NoError(t, err)
	assert.InDelta(t, -97.74, pt[0], 1e-9)
	assert.InDelta(t, 30.27, pt[1], 1e-9)

	// SRID prefix as PostGIS emits it
	pt, err = ParsePointWKT("SRID=4326;POINT(-97.74 30.27)")
	assert.NoError(t, err)
	assert.InDelta(t, 30.27, pt[1], 1e-9)

	_, err = ParsePointWKT("POLYGON((0 0,1 0,1 1,0 0))")
	assert.Error(t, err)

	_, err = ParsePointWKT("not wkt")
	assert.Error(t, err)
}

func TestParsePolygonWKT(t *testing.T) {
	p, err := ParsePolygonWKT("POLYGON((0 0,1 0,1 1,0 0))")
	assert.NoError(t, err)
	assert.Len(t, p[0], 4)

	_, err = ParsePolygonWKT("POINT(1 2)")
	assert.Error(t, err)
}

func TestMarshalWKTRoundTrip(t *testing.T) {
	p := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	s := MarshalWKT(p)
	assert.Contains(t, s, "SRID=4326;")

	back, err := ParsePolygonWKT(s)
	assert.NoError(t, err)
	assert.Equal(t, p, back)
}

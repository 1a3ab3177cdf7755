package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SRID for all stored geometry. Matches the PostGIS columns (WGS 84).
const SRID = 4326

// Point is an orb.Point stored as geometry(Point,4326). It scans the
// hex-EWKB PostGIS returns and marshals as GeoJSON on the wire.
type Point orb.Point

func (p Point) Lon() float64 { return p[0] }
func (p Point) Lat() float64 { return p[1] }

func (Point) GormDataType() string { return "geometry" }

// GormDBDataType picks the column type per dialect: PostGIS geometry on
// postgres, a plain blob of EWKB everywhere else.
func (Point) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "geometry(Point,4326)"
	}
	return "blob"
}

func (p Point) Value() (driver.Value, error) {
	return ewkb.Value(orb.Point(p), SRID).Value()
}

func (p *Point) Scan(input interface{}) error {
	if input == nil {
		return nil
	}
	var g orb.Point
	if err := ewkb.Scanner(&g).Scan(input); err != nil {
		return fmt.Errorf("scan point: %w", err)
	}
	*p = Point(g)
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	return geojson.NewGeometry(orb.Point(p)).MarshalJSON()
}

func (p *Point) UnmarshalJSON(data []byte) error {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return err
	}
	pt, ok := g.Geometry().(orb.Point)
	if !ok {
		return fmt.Errorf("expected GeoJSON Point, got %s", g.Type)
	}
	*p = Point(pt)
	return nil
}

// Polygon is an orb.Polygon stored as geometry(Polygon,4326).
type Polygon orb.Polygon

func (Polygon) GormDataType() string { return "geometry" }

func (Polygon) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "geometry(Polygon,4326)"
	}
	return "blob"
}

func (p Polygon) Value() (driver.Value, error) {
	return ewkb.Value(orb.Polygon(p), SRID).Value()
}

func (p *Polygon) Scan(input interface{}) error {
	if input == nil {
		return nil
	}
	var g orb.Polygon
	if err := ewkb.Scanner(&g).Scan(input); err != nil {
		return fmt.Errorf("scan polygon: %w", err)
	}
	*p = Polygon(g)
	return nil
}

func (p Polygon) MarshalJSON() ([]byte, error) {
	return geojson.NewGeometry(orb.Polygon(p)).MarshalJSON()
}

func (p *Polygon) UnmarshalJSON(data []byte) error {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return err
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return fmt.Errorf("expected GeoJSON Polygon, got %s", g.Type)
	}
	*p = Polygon(poly)
	return nil
}

// NewPoint builds a stored point from latitude/longitude. Orb points are
// (lon, lat) ordered like the WKT/GeoJSON they serialize to.
func NewPoint(lat, lon float64) Point {
	return Point{lon, lat}
}

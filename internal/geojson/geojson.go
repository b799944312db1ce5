package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Point is a lon/lat coordinate pair in WGS84 degrees.
type Point [2]float64

// Lon returns the longitude.
func (p Point) Lon() float64 { return p[0] }

// Lat returns the latitude.
func (p Point) Lat() float64 { return p[1] }

// Ring is a closed sequence of points. The first and last point are
// equal for valid rings.
type Ring []Point

// LineString is an open sequence of points.
type LineString []Point

// Polygon is an outer ring followed by zero or more hole rings.
type Polygon []Ring

// MultiPolygon is a set of polygons forming one logical area.
type MultiPolygon []Polygon

// Geometry is a GeoJSON geometry restricted to the types this pipeline
// produces and consumes.
type Geometry struct {
	Type string

	Point        Point
	LineString   LineString
	Polygon      Polygon
	MultiPolygon MultiPolygon
}

// Polygons returns the geometry's area parts regardless of whether it
// is a Polygon or a MultiPolygon. Nil for other types.
func (g *Geometry) Polygons() MultiPolygon {
	switch g.Type {
	case "Polygon":
		return MultiPolygon{g.Polygon}
	case "MultiPolygon":
		return g.MultiPolygon
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (g Geometry) MarshalJSON() ([]byte, error) {
	var coords any
	switch g.Type {
	case "Point":
		coords = g.Point
	case "LineString":
		coords = g.LineString
	case "Polygon":
		coords = g.Polygon
	case "MultiPolygon":
		coords = g.MultiPolygon
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
	return json.Marshal(struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}{g.Type, coords})
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Coordinates with extra dimensions (altitude) are truncated to
// lon/lat, which some providers emit.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	g.Type = raw.Type
	switch raw.Type {
	case "Point":
		var c []float64
		if err := json.Unmarshal(raw.Coordinates, &c); err != nil {
			return err
		}
		if len(c) < 2 {
			return fmt.Errorf("point with %d coordinates", len(c))
		}
		g.Point = Point{c[0], c[1]}
	case "LineString":
		var c [][]float64
		if err := json.Unmarshal(raw.Coordinates, &c); err != nil {
			return err
		}
		g.LineString = toPoints(c)
	case "Polygon":
		var c [][][]float64
		if err := json.Unmarshal(raw.Coordinates, &c); err != nil {
			return err
		}
		g.Polygon = toPolygon(c)
	case "MultiPolygon":
		var c [][][][]float64
		if err := json.Unmarshal(raw.Coordinates, &c); err != nil {
			return err
		}
		for _, poly := range c {
			g.MultiPolygon = append(g.MultiPolygon, toPolygon(poly))
		}
	default:
		return fmt.Errorf("unsupported geometry type %q", raw.Type)
	}
	return nil
}

func toPoints(coords [][]float64) []Point {
	pts := make([]Point, 0, len(coords))
	for _, c := range coords {
		if len(c) >= 2 {
			pts = append(pts, Point{c[0], c[1]})
		}
	}
	return pts
}

func toPolygon(coords [][][]float64) Polygon {
	poly := make(Polygon, 0, len(coords))
	for _, ring := range coords {
		poly = append(poly, Ring(toPoints(ring)))
	}
	return poly
}

// Feature is one GeoJSON feature with free-form properties.
type Feature struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
	Geometry   Geometry          `json:"geometry"`
}

// NewFeature creates a feature with initialized properties.
func NewFeature(geometry Geometry) *Feature {
	return &Feature{
		Type:       "Feature",
		Properties: make(map[string]string),
		Geometry:   geometry,
	}
}

// UnmarshalJSON implements json.Unmarshaler, coercing non-string
// property values to strings so lookups stay uniform across providers.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Geometry   Geometry       `json:"geometry"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Type = raw.Type
	f.Geometry = raw.Geometry
	f.Properties = make(map[string]string, len(raw.Properties))
	for k, v := range raw.Properties {
		switch val := v.(type) {
		case string:
			f.Properties[k] = val
		case float64:
			f.Properties[k] = trimFloat(val)
		case bool:
			f.Properties[k] = fmt.Sprintf("%v", val)
		case nil:
			// skip
		default:
			b, err := json.Marshal(val)
			if err == nil {
				f.Properties[k] = string(b)
			}
		}
	}
	return nil
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// FeatureCollection is a set of features, the interchange format every
// fetcher writes and the renderer reads.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates an empty collection.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection"}
}

// Append adds a feature.
func (fc *FeatureCollection) Append(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// WriteFile writes the collection as indented JSON, creating parent
// directories as needed.
func (fc *FeatureCollection) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fc, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a feature collection from disk.
func ReadFile(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

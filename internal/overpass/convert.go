package overpass

import (
	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/overpass/dto"
)

// index holds a body-mode response split by element type.
type index struct {
	nodes     map[int64]geojson.Point
	ways      map[int64][]int64
	relations []dto.Element
}

func buildIndex(resp *dto.Response) *index {
	idx := &index{
		nodes: make(map[int64]geojson.Point),
		ways:  make(map[int64][]int64),
	}
	for _, el := range resp.Elements {
		switch el.Type {
		case "node":
			idx.nodes[el.ID] = geojson.Point{el.Lon, el.Lat}
		case "way":
			idx.ways[el.ID] = el.Nodes
		case "relation":
			idx.relations = append(idx.relations, el)
		}
	}
	return idx
}

// waySegments resolves way node references into coordinate segments,
// split by member role.
func (idx *index) waySegments(members []dto.Member) (outer, inner [][]geojson.Point) {
	for _, m := range members {
		if m.Type != "way" {
			continue
		}
		nodeIDs, ok := idx.ways[m.Ref]
		if !ok {
			continue
		}
		var coords []geojson.Point
		for _, id := range nodeIDs {
			if pt, ok := idx.nodes[id]; ok {
				coords = append(coords, pt)
			}
		}
		if len(coords) == 0 {
			continue
		}
		if m.Role == "inner" {
			inner = append(inner, coords)
		} else {
			outer = append(outer, coords)
		}
	}
	return outer, inner
}

// relationGeometry assembles a relation's member ways into a Polygon or
// MultiPolygon. Returns false when no outer ring can be built.
//
// Holes are attached to the first polygon of a multipolygon; matching
// holes to their exact outer ring would need point-in-polygon tests the
// downstream rendering does not benefit from.
func (idx *index) relationGeometry(rel dto.Element) (geojson.Geometry, bool) {
	outerSegs, innerSegs := idx.waySegments(rel.Members)
	outer := assembleRings(outerSegs)
	inner := assembleRings(innerSegs)
	return ringsToGeometry(outer, inner)
}

func ringsToGeometry(outer, inner []geojson.Ring) (geojson.Geometry, bool) {
	switch len(outer) {
	case 0:
		return geojson.Geometry{}, false
	case 1:
		poly := geojson.Polygon{outer[0]}
		poly = append(poly, inner...)
		return geojson.Geometry{Type: "Polygon", Polygon: poly}, true
	default:
		var multi geojson.MultiPolygon
		for _, r := range outer {
			multi = append(multi, geojson.Polygon{r})
		}
		multi[0] = append(multi[0], inner...)
		return geojson.Geometry{Type: "MultiPolygon", MultiPolygon: multi}, true
	}
}

// relationPolygons builds one polygon feature per relation carrying the
// given tag. Relations whose rings cannot be assembled are reported in
// failed by their tag value.
func relationPolygons(resp *dto.Response, osmTag string) (features []*geojson.Feature, failed []string) {
	idx := buildIndex(resp)

	for _, rel := range idx.relations {
		ref, ok := rel.Tags[osmTag]
		if !ok {
			continue
		}
		geom, ok := idx.relationGeometry(rel)
		if !ok {
			failed = append(failed, ref)
			continue
		}
		f := geojson.NewFeature(geom)
		for k, v := range rel.Tags {
			f.Properties[k] = v
		}
		features = append(features, f)
	}
	return features, failed
}

// relationPolygonsByID builds polygon features for relations fetched by
// ID, injecting the tag value the relation itself lacks.
func relationPolygonsByID(resp *dto.Response, refByID map[int64]string, osmTag string) (features []*geojson.Feature, failed []string) {
	idx := buildIndex(resp)

	for _, rel := range idx.relations {
		ref, ok := refByID[rel.ID]
		if !ok {
			continue
		}
		geom, ok := idx.relationGeometry(rel)
		if !ok {
			failed = append(failed, ref)
			continue
		}
		f := geojson.NewFeature(geom)
		for k, v := range rel.Tags {
			f.Properties[k] = v
		}
		f.Properties[osmTag] = ref
		features = append(features, f)
	}
	return features, failed
}

// wayLines converts geom-mode output into line features. Ways become
// one feature each; relation members inherit the relation's name, which
// is how braided rivers keep a single name across their channels.
func wayLines(resp *dto.Response) []*geojson.Feature {
	var features []*geojson.Feature

	appendLine := func(coords []dto.Coord, name string) {
		if len(coords) < 2 {
			return
		}
		line := make(geojson.LineString, len(coords))
		for i, c := range coords {
			line[i] = geojson.Point{c.Lon, c.Lat}
		}
		f := geojson.NewFeature(geojson.Geometry{Type: "LineString", LineString: line})
		f.Properties["name"] = name
		features = append(features, f)
	}

	for _, el := range resp.Elements {
		switch el.Type {
		case "way":
			appendLine(el.Geometry, el.Name())
		case "relation":
			for _, m := range el.Members {
				if m.Type == "way" {
					appendLine(m.Geometry, el.Name())
				}
			}
		}
	}
	return features
}

// waterPolygons converts geom-mode output into lake polygon features.
// Closed ways become simple polygons; multipolygon relations get their
// member ways assembled into rings.
func waterPolygons(resp *dto.Response) []*geojson.Feature {
	var features []*geojson.Feature

	for _, el := range resp.Elements {
		switch el.Type {
		case "way":
			if len(el.Geometry) < 4 {
				continue
			}
			ring := make([]geojson.Point, len(el.Geometry))
			for i, c := range el.Geometry {
				ring[i] = geojson.Point{c.Lon, c.Lat}
			}
			if !closePoints(ring[0], ring[len(ring)-1]) {
				ring = append(ring, ring[0])
			}
			f := geojson.NewFeature(geojson.Geometry{
				Type:    "Polygon",
				Polygon: geojson.Polygon{geojson.Ring(ring)},
			})
			f.Properties["name"] = el.Name()
			features = append(features, f)

		case "relation":
			var outerSegs, innerSegs [][]geojson.Point
			for _, m := range el.Members {
				if m.Type != "way" || len(m.Geometry) < 2 {
					continue
				}
				coords := make([]geojson.Point, len(m.Geometry))
				for i, c := range m.Geometry {
					coords[i] = geojson.Point{c.Lon, c.Lat}
				}
				if m.Role == "inner" {
					innerSegs = append(innerSegs, coords)
				} else {
					outerSegs = append(outerSegs, coords)
				}
			}
			geom, ok := ringsToGeometry(assembleRings(outerSegs), assembleRings(innerSegs))
			if !ok {
				continue
			}
			f := geojson.NewFeature(geom)
			f.Properties["name"] = el.Name()
			features = append(features, f)
		}
	}
	return features
}

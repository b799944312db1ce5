// Package geojson holds the GeoJSON types and the small set of planar
// geometry operations the pipeline needs.
//
// The geometry model is deliberately narrow: Point, LineString,
// Polygon and MultiPolygon in WGS84 degrees, which is everything the
// geodata fetchers produce. Coordinates parse leniently (altitude
// values are dropped, numeric properties become strings) because the
// upstream providers disagree on such details.
//
// Operations are planar in degree space except where kilometers
// matter: LineString.LengthKm and Polygon.AreaKm2 apply a cosine
// latitude correction, which is accurate to well under a percent at
// Alpine latitudes over the feature sizes involved.
//
// PoleOfInaccessibility implements the quadtree algorithm known from
// mapbox/polylabel and anchors all label and symbol placement.
package geojson

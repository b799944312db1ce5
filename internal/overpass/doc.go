// Package overpass fetches OSM geodata through the Overpass API and
// normalizes it into GeoJSON.
//
// Four queries cover everything the basemap and the polygon decks
// need:
//
//   - classification polygons: tagged relations in the region bbox,
//     with a by-relation-ID fallback for groups lacking the tag
//   - country borders: admin_level=2 boundary ways
//   - rivers: waterway=river ways and relations
//   - lakes: natural=water polygons of type lake or reservoir
//
// Polygon queries use body output and reassemble relation member ways
// into closed rings; line and water queries use geom output with
// inline coordinates.
//
// The public Overpass instance drops long queries under load, so every
// query runs a small fixed number of attempts with a flat pause, and
// the server-side [timeout:] budget travels in the query header.
package overpass

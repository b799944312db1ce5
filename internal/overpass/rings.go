package overpass

import (
	"math"

	"github.com/peaksoaring/alpdeck/internal/geojson"
)

// coordTol is the endpoint matching tolerance in degrees. OSM way
// endpoints that should join occasionally differ in the last digit.
const coordTol = 1e-7

func closePoints(a, b geojson.Point) bool {
	return math.Abs(a.Lon()-b.Lon()) < coordTol && math.Abs(a.Lat()-b.Lat()) < coordTol
}

// assembleRings chains way segments into closed rings.
//
// Relation members arrive in arbitrary order and direction, so
// segments are greedily attached to either end of the growing ring,
// reversed when needed. Rings that don't close after all reachable
// segments are used get closed explicitly; rings with fewer than four
// points are dropped as degenerate.
func assembleRings(segments [][]geojson.Point) []geojson.Ring {
	var rings []geojson.Ring
	used := make([]bool, len(segments))

	for {
		start := -1
		for i, u := range used {
			if !u && len(segments[i]) >= 2 {
				start = i
				break
			}
		}
		if start == -1 {
			break
		}

		ring := append([]geojson.Point(nil), segments[start]...)
		used[start] = true

		for changed := true; changed; {
			changed = false
			for i, seg := range segments {
				if used[i] || len(seg) < 2 {
					continue
				}
				switch {
				case closePoints(ring[len(ring)-1], seg[0]):
					ring = append(ring, seg[1:]...)
				case closePoints(ring[len(ring)-1], seg[len(seg)-1]):
					ring = append(ring, reversed(seg)[1:]...)
				case closePoints(ring[0], seg[len(seg)-1]):
					ring = append(append([]geojson.Point(nil), seg[:len(seg)-1]...), ring...)
				case closePoints(ring[0], seg[0]):
					ring = append(reversed(seg)[:len(seg)-1], ring...)
				default:
					continue
				}
				used[i] = true
				changed = true
			}
		}

		if !closePoints(ring[0], ring[len(ring)-1]) {
			ring = append(ring, ring[0])
		}
		if len(ring) >= 4 {
			rings = append(rings, geojson.Ring(ring))
		}
	}

	return rings
}

func reversed(pts []geojson.Point) []geojson.Point {
	out := make([]geojson.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

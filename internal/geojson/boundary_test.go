package geojson

import "testing"

// segmentCount sums the edges over all chains.
func segmentCount(lines []LineString) int {
	n := 0
	for _, l := range lines {
		n += len(l) - 1
	}
	return n
}

func hasSegment(lines []LineString, a, b Point) bool {
	for _, l := range lines {
		for i := 0; i < len(l)-1; i++ {
			if (l[i] == a && l[i+1] == b) || (l[i] == b && l[i+1] == a) {
				return true
			}
		}
	}
	return false
}

func TestMultiPolygon_BoundariesSingle(t *testing.T) {
	outline, internal := MultiPolygon{{unitSquare()}}.Boundaries()

	if len(internal) != 0 {
		t.Errorf("single polygon has %d internal chains, want 0", len(internal))
	}
	if len(outline) != 1 || segmentCount(outline) != 4 {
		t.Fatalf("outline = %d chains, %d segments, want 1 chain of 4", len(outline), segmentCount(outline))
	}
	loop := outline[0]
	if loop[0] != loop[len(loop)-1] {
		t.Errorf("outline chain not closed: %v .. %v", loop[0], loop[len(loop)-1])
	}
}

func TestMultiPolygon_BoundariesAdjacent(t *testing.T) {
	// Two unit squares sharing the edge lon=1, the vertex chain
	// repeated exactly as a planar partition stores it.
	left := Polygon{Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	right := Polygon{Ring{{1, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 0}}}

	outline, internal := MultiPolygon{left, right}.Boundaries()

	if got := segmentCount(internal); got != 1 {
		t.Fatalf("internal segments = %d, want 1", got)
	}
	if !hasSegment(internal, Point{1, 0}, Point{1, 1}) {
		t.Errorf("internal chain %v misses the shared edge", internal)
	}

	// The outline is the 2x1 rectangle's perimeter without the shared
	// edge.
	if got := segmentCount(outline); got != 6 {
		t.Errorf("outline segments = %d, want 6", got)
	}
	if hasSegment(outline, Point{1, 0}, Point{1, 1}) {
		t.Error("shared edge leaked into the outline")
	}
	if !hasSegment(outline, Point{0, 0}, Point{1, 0}) || !hasSegment(outline, Point{1, 0}, Point{2, 0}) {
		t.Errorf("outline %v misses perimeter edges", outline)
	}
}

func TestMultiPolygon_BoundariesSubdividedEdge(t *testing.T) {
	// The right square's left side carries an extra vertex. Only the
	// exactly repeated half is interior; the unsplit half stays on
	// both outlines, as a partition with mismatched chains would
	// genuinely have a seam there.
	left := Polygon{Ring{{0, 0}, {1, 0}, {1, 0.5}, {0, 0.5}, {0, 0}}}
	right := Polygon{Ring{{1, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 0.5}, {1, 0}}}

	_, internal := MultiPolygon{left, right}.Boundaries()

	if !hasSegment(internal, Point{1, 0}, Point{1, 0.5}) {
		t.Errorf("internal chains %v miss the repeated segment", internal)
	}
	if hasSegment(internal, Point{1, 0.5}, Point{1, 1}) {
		t.Error("unshared segment classified as internal")
	}
}

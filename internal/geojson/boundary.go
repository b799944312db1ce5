package geojson

// boundarySegment is one undirected ring edge, endpoints in canonical
// order so the same edge hashes identically from either side.
type boundarySegment struct {
	a, b Point
}

func newBoundarySegment(a, b Point) boundarySegment {
	if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
		a, b = b, a
	}
	return boundarySegment{a: a, b: b}
}

// Boundaries splits the ring edges of the polygon set by multiplicity:
// edges belonging to exactly one ring trace the outline of the covered
// area, edges repeated across rings lie in its interior. Member
// polygons must come from a planar partition, where adjacent members
// repeat the shared vertex chain exactly; under that assumption the
// split matches a boolean union's boundary without computing one.
func (m MultiPolygon) Boundaries() (outline, internal []LineString) {
	counts := make(map[boundarySegment]int)
	var order []boundarySegment

	for _, poly := range m {
		for _, ring := range poly {
			pts := ring
			if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
				pts = pts[:len(pts)-1]
			}
			if len(pts) < 3 {
				continue
			}
			for i := range pts {
				a, b := pts[i], pts[(i+1)%len(pts)]
				if a == b {
					continue
				}
				seg := newBoundarySegment(a, b)
				if counts[seg] == 0 {
					order = append(order, seg)
				}
				counts[seg]++
			}
		}
	}

	var outer, inner []boundarySegment
	for _, seg := range order {
		if counts[seg] == 1 {
			outer = append(outer, seg)
		} else {
			inner = append(inner, seg)
		}
	}
	return stitchSegments(outer), stitchSegments(inner)
}

// stitchSegments chains segments sharing endpoints into polylines, so
// strokes and dash patterns run continuously instead of restarting at
// every vertex.
func stitchSegments(segs []boundarySegment) []LineString {
	if len(segs) == 0 {
		return nil
	}

	byPoint := make(map[Point][]int)
	for i, s := range segs {
		byPoint[s.a] = append(byPoint[s.a], i)
		byPoint[s.b] = append(byPoint[s.b], i)
	}
	used := make([]bool, len(segs))

	takeAt := func(pt Point) (Point, bool) {
		for _, i := range byPoint[pt] {
			if used[i] {
				continue
			}
			used[i] = true
			if segs[i].a == pt {
				return segs[i].b, true
			}
			return segs[i].a, true
		}
		return Point{}, false
	}

	var out []LineString
	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		line := LineString{segs[i].a, segs[i].b}
		for {
			next, ok := takeAt(line[len(line)-1])
			if !ok {
				break
			}
			line = append(line, next)
		}
		// Open chains can start mid-way, so grow at the head too.
		for {
			prev, ok := takeAt(line[0])
			if !ok {
				break
			}
			line = append(LineString{prev}, line...)
		}
		out = append(out, line)
	}
	return out
}

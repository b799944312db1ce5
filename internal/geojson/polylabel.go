package geojson

import (
	"container/heap"
	"math"
)

// PoleOfInaccessibility returns the interior point farthest from the
// polygon's edges, plus that distance, using the quadtree subdivision
// algorithm known from mapbox/polylabel. precision is the acceptable
// error in degrees; zero picks one based on the polygon size.
//
// Label and question-mark placement both route through this: it yields
// stable, visually centered points even for crescent-shaped groups
// where the centroid falls outside.
func PoleOfInaccessibility(p Polygon, precision float64) (Point, float64) {
	if len(p) == 0 || len(p[0]) == 0 {
		return Point{}, 0
	}

	b := p.Bounds()
	width := b.MaxLon - b.MinLon
	height := b.MaxLat - b.MinLat
	cellSize := math.Min(width, height)
	if cellSize == 0 {
		return Point{b.MinLon, b.MinLat}, 0
	}
	if precision <= 0 {
		precision = cellSize / 100
	}

	h := cellSize / 2
	queue := &cellQueue{}
	heap.Init(queue)

	// Seed with a regular grid over the bounding box.
	for x := b.MinLon; x < b.MaxLon; x += cellSize {
		for y := b.MinLat; y < b.MaxLat; y += cellSize {
			heap.Push(queue, newCell(Point{x + h, y + h}, h, p))
		}
	}

	best := newCell(p.Centroid(), 0, p)
	if bboxCell := newCell(Point{b.MinLon + width/2, b.MinLat + height/2}, 0, p); bboxCell.dist > best.dist {
		best = bboxCell
	}

	for queue.Len() > 0 {
		c := heap.Pop(queue).(*cell)

		if c.dist > best.dist {
			best = c
		}

		// A cell can't contain a better point than this bound.
		if c.max-best.dist <= precision {
			continue
		}

		h := c.half / 2
		heap.Push(queue, newCell(Point{c.center.Lon() - h, c.center.Lat() - h}, h, p))
		heap.Push(queue, newCell(Point{c.center.Lon() + h, c.center.Lat() - h}, h, p))
		heap.Push(queue, newCell(Point{c.center.Lon() - h, c.center.Lat() + h}, h, p))
		heap.Push(queue, newCell(Point{c.center.Lon() + h, c.center.Lat() + h}, h, p))
	}

	return best.center, best.dist
}

type cell struct {
	center Point
	half   float64
	dist   float64 // signed distance from center to polygon edge
	max    float64 // upper bound on distance within the cell
}

func newCell(center Point, half float64, p Polygon) *cell {
	dist := p.distanceToEdges(center)
	return &cell{
		center: center,
		half:   half,
		dist:   dist,
		max:    dist + half*math.Sqrt2,
	}
}

// cellQueue is a max-heap ordered by the cells' upper distance bound.
type cellQueue []*cell

func (q cellQueue) Len() int           { return len(q) }
func (q cellQueue) Less(i, j int) bool { return q[i].max > q[j].max }
func (q cellQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *cellQueue) Push(x any)        { *q = append(*q, x.(*cell)) }
func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

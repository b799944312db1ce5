package geojson

import "math"

const earthRadiusKm = 6371.0

// Bounds is an axis-aligned bounding box in degrees.
type Bounds struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

func emptyBounds() Bounds {
	return Bounds{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
}

// Extend grows the bounds to include the point.
func (b *Bounds) Extend(p Point) {
	b.MinLon = math.Min(b.MinLon, p.Lon())
	b.MaxLon = math.Max(b.MaxLon, p.Lon())
	b.MinLat = math.Min(b.MinLat, p.Lat())
	b.MaxLat = math.Max(b.MaxLat, p.Lat())
}

// Bounds returns the bounding box of the ring.
func (r Ring) Bounds() Bounds {
	b := emptyBounds()
	for _, p := range r {
		b.Extend(p)
	}
	return b
}

// Bounds returns the bounding box of the outer ring.
func (p Polygon) Bounds() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	return p[0].Bounds()
}

// Bounds returns the bounding box over all member polygons.
func (m MultiPolygon) Bounds() Bounds {
	b := emptyBounds()
	for _, poly := range m {
		for _, ring := range poly {
			for _, pt := range ring {
				b.Extend(pt)
			}
		}
	}
	return b
}

// Area returns the planar shoelace area of the ring in square degrees.
// Always positive regardless of winding.
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(r)-1; i++ {
		sum += r[i].Lon()*r[i+1].Lat() - r[i+1].Lon()*r[i].Lat()
	}
	return math.Abs(sum) / 2
}

// Area returns the polygon area in square degrees, holes subtracted.
func (p Polygon) Area() float64 {
	if len(p) == 0 {
		return 0
	}
	area := p[0].Area()
	for _, hole := range p[1:] {
		area -= hole.Area()
	}
	return area
}

// Area returns the summed area of all member polygons.
func (m MultiPolygon) Area() float64 {
	var area float64
	for _, p := range m {
		area += p.Area()
	}
	return area
}

// AreaKm2 approximates the area in square kilometers by correcting the
// longitude scale at the polygon's central latitude. Good enough for
// the "lakes at least 1 km²" style thresholds it serves.
func (p Polygon) AreaKm2() float64 {
	b := p.Bounds()
	midLat := (b.MinLat + b.MaxLat) / 2
	kmPerDegLat := 2 * math.Pi * earthRadiusKm / 360
	kmPerDegLon := kmPerDegLat * math.Cos(midLat*math.Pi/180)
	return p.Area() * kmPerDegLat * kmPerDegLon
}

// Contains reports whether the point lies inside the polygon, holes
// excluded, using the even-odd rule.
func (p Polygon) Contains(pt Point) bool {
	if len(p) == 0 || !p[0].contains(pt) {
		return false
	}
	for _, hole := range p[1:] {
		if hole.contains(pt) {
			return false
		}
	}
	return true
}

// Contains reports whether any member polygon contains the point.
func (m MultiPolygon) Contains(pt Point) bool {
	for _, p := range m {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

func (r Ring) contains(pt Point) bool {
	inside := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		xi, yi := r[i].Lon(), r[i].Lat()
		xj, yj := r[j].Lon(), r[j].Lat()
		if (yi > pt.Lat()) != (yj > pt.Lat()) &&
			pt.Lon() < (xj-xi)*(pt.Lat()-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the area-weighted centroid of the outer ring.
func (p Polygon) Centroid() Point {
	if len(p) == 0 || len(p[0]) < 3 {
		return Point{}
	}
	r := p[0]
	var cx, cy, a float64
	for i := 0; i < len(r)-1; i++ {
		cross := r[i].Lon()*r[i+1].Lat() - r[i+1].Lon()*r[i].Lat()
		cx += (r[i].Lon() + r[i+1].Lon()) * cross
		cy += (r[i].Lat() + r[i+1].Lat()) * cross
		a += cross
	}
	if a == 0 {
		return r[0]
	}
	return Point{cx / (3 * a), cy / (3 * a)}
}

// Centroid returns the centroid of the largest member polygon.
func (m MultiPolygon) Centroid() Point {
	var largest Polygon
	var largestArea float64
	for _, p := range m {
		if a := p.Area(); a > largestArea {
			largestArea = a
			largest = p
		}
	}
	return largest.Centroid()
}

// Largest returns the member polygon with the greatest area.
func (m MultiPolygon) Largest() Polygon {
	var largest Polygon
	var largestArea float64
	for _, p := range m {
		if a := p.Area(); a >= largestArea {
			largestArea = a
			largest = p
		}
	}
	return largest
}

// LengthKm returns the haversine length of the line in kilometers.
func (l LineString) LengthKm() float64 {
	var total float64
	for i := 0; i < len(l)-1; i++ {
		total += haversineKm(l[i], l[i+1])
	}
	return total
}

func haversineKm(a, b Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// BoundaryDistance returns the minimum distance in degrees from the
// point to the polygon boundary, negative when the point lies outside.
func (p Polygon) BoundaryDistance(pt Point) float64 {
	return p.distanceToEdges(pt)
}

// distanceToEdges returns the minimum distance from the point to any
// polygon edge, negative when the point lies outside.
func (p Polygon) distanceToEdges(pt Point) float64 {
	min := math.Inf(1)
	for _, ring := range p {
		for i := 0; i < len(ring)-1; i++ {
			if d := segmentDistance(pt, ring[i], ring[i+1]); d < min {
				min = d
			}
		}
	}
	if !p.Contains(pt) {
		return -min
	}
	return min
}

func segmentDistance(p, a, b Point) float64 {
	x, y := p.Lon(), p.Lat()
	x1, y1 := a.Lon(), a.Lat()
	dx, dy := b.Lon()-x1, b.Lat()-y1

	if dx != 0 || dy != 0 {
		t := ((x-x1)*dx + (y-y1)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x1, y1 = b.Lon(), b.Lat()
		} else if t > 0 {
			x1 += dx * t
			y1 += dy * t
		}
	}
	return math.Hypot(x-x1, y-y1)
}

package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// PixelDims returns the output raster size for a bounding box.
//
// The geographic aspect ratio is corrected by cos(mid latitude) so one
// degree of longitude and one degree of latitude cover proportional
// pixel spans. The longest side is set to longEdge, then the whole
// image is shrunk if the short side still exceeds shortEdge.
func PixelDims(bbox model.BBox, longEdge, shortEdge int) (int, int) {
	aspect := bbox.Width() * math.Cos(bbox.MidLat()*math.Pi/180) / bbox.Height()

	var w, h float64
	if aspect >= 1 {
		w = float64(longEdge)
		h = float64(longEdge) / aspect
	} else {
		h = float64(longEdge)
		w = float64(longEdge) * aspect
	}
	if short := math.Min(w, h); short > float64(shortEdge) {
		s := float64(shortEdge) / short
		w *= s
		h *= s
	}
	return int(w), int(h)
}

// Canvas is an RGBA raster with an equirectangular geo-to-pixel
// mapping and a small set of vector drawing primitives.
type Canvas struct {
	Img *image.RGBA

	bbox model.BBox
	w, h int
}

// NewCanvas returns a transparent canvas of the given size mapping the
// bounding box onto it, west-to-east left-to-right and north at the
// top.
func NewCanvas(bbox model.BBox, w, h int) *Canvas {
	return &Canvas{
		Img:  image.NewRGBA(image.Rect(0, 0, w, h)),
		bbox: bbox,
		w:    w,
		h:    h,
	}
}

// Fill floods the whole canvas with a color.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Pixel maps geographic coordinates to pixel coordinates.
func (c *Canvas) Pixel(lon, lat float64) (float32, float32) {
	x := (lon - c.bbox.West) / c.bbox.Width() * float64(c.w)
	y := (c.bbox.North - lat) / c.bbox.Height() * float64(c.h)
	return float32(x), float32(y)
}

// Geo is the inverse of Pixel.
func (c *Canvas) Geo(x, y float64) (lon, lat float64) {
	lon = c.bbox.West + x/float64(c.w)*c.bbox.Width()
	lat = c.bbox.North - y/float64(c.h)*c.bbox.Height()
	return lon, lat
}

// pxPerLat returns vertical pixels per degree of latitude.
func (c *Canvas) pxPerLat() float64 {
	return float64(c.h) / c.bbox.Height()
}

type pixelPoint struct {
	x, y float32
}

func (c *Canvas) toPixels(pts []geojson.Point) []pixelPoint {
	out := make([]pixelPoint, len(pts))
	for i, p := range pts {
		out[i].x, out[i].y = c.Pixel(p.Lon(), p.Lat())
	}
	return out
}

func (c *Canvas) newRasterizer() *vector.Rasterizer {
	r := vector.NewRasterizer(c.w, c.h)
	r.DrawOp = draw.Over
	return r
}

func (c *Canvas) paint(r *vector.Rasterizer, col color.NRGBA) {
	r.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{})
}

// addRing appends a closed ring to the rasterizer path. clockwise
// selects the winding direction in pixel space; the rasterizer uses
// the non-zero rule, so holes must wind opposite to their outer ring.
func addRing(r *vector.Rasterizer, pts []pixelPoint, clockwise bool) {
	if len(pts) < 3 {
		return
	}
	if pixelArea(pts) < 0 != clockwise {
		// pixelArea is negative for clockwise rings in screen space.
		reversePixels(pts)
	}
	r.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		r.LineTo(p.x, p.y)
	}
	r.ClosePath()
}

// pixelArea is the signed shoelace area in screen coordinates, where
// the y axis points down.
func pixelArea(pts []pixelPoint) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += float64(pts[i].x)*float64(pts[j].y) - float64(pts[j].x)*float64(pts[i].y)
	}
	return sum / 2
}

func reversePixels(pts []pixelPoint) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// FillPolygon fills a polygon, respecting its holes.
func (c *Canvas) FillPolygon(p geojson.Polygon, col color.NRGBA) {
	if len(p) == 0 {
		return
	}
	r := c.newRasterizer()
	addRing(r, c.toPixels(p[0]), false)
	for _, hole := range p[1:] {
		addRing(r, c.toPixels(hole), true)
	}
	c.paint(r, col)
}

// FillMultiPolygon fills every part of a multipolygon in one pass so
// a translucent color does not double up on overlapping parts.
func (c *Canvas) FillMultiPolygon(m geojson.MultiPolygon, col color.NRGBA) {
	if len(m) == 0 {
		return
	}
	r := c.newRasterizer()
	for _, p := range m {
		if len(p) == 0 {
			continue
		}
		addRing(r, c.toPixels(p[0]), false)
		for _, hole := range p[1:] {
			addRing(r, c.toPixels(hole), true)
		}
	}
	c.paint(r, col)
}

// addStroke appends a stroked polyline to the rasterizer path: one
// quad per segment plus a round join at every vertex.
func addStroke(r *vector.Rasterizer, pts []pixelPoint, width float64) {
	half := float32(width / 2)
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.x-a.x, b.y-a.y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		// unit normal
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(a.x+nx, a.y+ny)
		r.LineTo(b.x+nx, b.y+ny)
		r.LineTo(b.x-nx, b.y-ny)
		r.LineTo(a.x-nx, a.y-ny)
		r.ClosePath()
	}
	for _, p := range pts {
		addCircle(r, p.x, p.y, half)
	}
}

// addCircle appends a 24-gon approximation of a circle.
func addCircle(r *vector.Rasterizer, cx, cy, radius float32) {
	if radius <= 0 {
		return
	}
	const n = 24
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / n
		x := cx + radius*float32(math.Cos(a))
		y := cy + radius*float32(math.Sin(a))
		if i == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
}

// StrokeLine draws a polyline with the given width in pixels.
func (c *Canvas) StrokeLine(pts []geojson.Point, width float64, col color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	r := c.newRasterizer()
	addStroke(r, c.toPixels(pts), width)
	c.paint(r, col)
}

// StrokeRing draws a closed ring outline.
func (c *Canvas) StrokeRing(ring geojson.Ring, width float64, col color.NRGBA) {
	if len(ring) < 3 {
		return
	}
	pts := append(geojson.Ring{}, ring...)
	if pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	c.StrokeLine(pts, width, col)
}

// StrokePolygon draws all ring outlines of a polygon.
func (c *Canvas) StrokePolygon(p geojson.Polygon, width float64, col color.NRGBA) {
	for _, ring := range p {
		c.StrokeRing(ring, width, col)
	}
}

// StrokeDashed draws a dashed polyline. dashOn and dashOff are the
// stroke and gap lengths in pixels.
func (c *Canvas) StrokeDashed(pts []geojson.Point, width, dashOn, dashOff float64, col color.NRGBA) {
	px := c.toPixels(pts)
	if len(px) < 2 {
		return
	}
	r := c.newRasterizer()

	period := dashOn + dashOff
	var travelled float64
	var dash []pixelPoint

	flush := func() {
		if len(dash) >= 2 {
			addStroke(r, dash, width)
		}
		dash = dash[:0]
	}

	for i := 0; i+1 < len(px); i++ {
		a, b := px[i], px[i+1]
		segLen := math.Hypot(float64(b.x-a.x), float64(b.y-a.y))
		if segLen == 0 {
			continue
		}
		pos := 0.0
		for pos < segLen {
			phase := math.Mod(travelled+pos, period)
			var runEnd float64
			inDash := phase < dashOn
			if inDash {
				runEnd = math.Min(segLen, pos+dashOn-phase)
			} else {
				runEnd = math.Min(segLen, pos+period-phase)
			}
			p0 := lerpPixel(a, b, pos/segLen)
			p1 := lerpPixel(a, b, runEnd/segLen)
			if inDash {
				if len(dash) == 0 {
					dash = append(dash, p0)
				}
				dash = append(dash, p1)
			} else {
				flush()
			}
			pos = runEnd
		}
		travelled += segLen
	}
	flush()
	c.paint(r, col)
}

func lerpPixel(a, b pixelPoint, t float64) pixelPoint {
	return pixelPoint{
		x: a.x + float32(t)*(b.x-a.x),
		y: a.y + float32(t)*(b.y-a.y),
	}
}

// FillCircle fills a circle at pixel coordinates.
func (c *Canvas) FillCircle(cx, cy float32, radius float64, col color.NRGBA) {
	r := c.newRasterizer()
	addCircle(r, cx, cy, float32(radius))
	c.paint(r, col)
}

// StrokeEllipse draws an ellipse outline at pixel coordinates with the
// given pixel radii.
func (c *Canvas) StrokeEllipse(cx, cy float32, rx, ry, width float64, col color.NRGBA) {
	const n = 64
	pts := make([]pixelPoint, n+1)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / n
		pts[i].x = cx + float32(rx*math.Cos(a))
		pts[i].y = cy + float32(ry*math.Sin(a))
	}
	r := c.newRasterizer()
	addStroke(r, pts, width)
	c.paint(r, col)
}

// FillRect fills an axis-aligned pixel rectangle.
func (c *Canvas) FillRect(x0, y0, x1, y1 float32, col color.NRGBA) {
	r := c.newRasterizer()
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.ClosePath()
	c.paint(r, col)
}

package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/peaksoaring/alpdeck/internal/model"
)

// markerRadius converts a marker size in points to a pixel radius.
func markerRadius(sizePt float64) float64 {
	return ptToPx(sizePt) / 2
}

// drawMarker draws one category marker shape centered at pixel
// coordinates, with a thin white edge so it stays readable on any
// terrain color.
func (c *Canvas) drawMarker(shape model.MarkerShape, x, y float32, radius float64, col color.NRGBA) {
	white := mustHex("#FFFFFF")
	edge := ptToPx(poiEdgeWidthPt)

	var pts []pixelPoint
	switch shape {
	case model.MarkerTriangle:
		pts = regularPolygon(x, y, radius, 3, -math.Pi/2)
	case model.MarkerSquare:
		pts = regularPolygon(x, y, radius, 4, -math.Pi/4)
	case model.MarkerDiamond:
		pts = regularPolygon(x, y, radius, 4, -math.Pi/2)
	default: // circle
		c.FillCircle(x, y, radius+edge, white)
		c.FillCircle(x, y, radius, col)
		return
	}

	r := c.newRasterizer()
	outer := regularPolygonScaled(pts, x, y, (radius+edge)/radius)
	addPixelPath(r, outer)
	c.paint(r, white)

	r = c.newRasterizer()
	addPixelPath(r, pts)
	c.paint(r, col)
}

func regularPolygon(cx, cy float32, radius float64, n int, phase float64) []pixelPoint {
	pts := make([]pixelPoint, n)
	for i := 0; i < n; i++ {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		pts[i].x = cx + float32(radius*math.Cos(a))
		pts[i].y = cy + float32(radius*math.Sin(a))
	}
	return pts
}

func regularPolygonScaled(pts []pixelPoint, cx, cy float32, s float64) []pixelPoint {
	out := make([]pixelPoint, len(pts))
	for i, p := range pts {
		out[i].x = cx + float32(s)*(p.x-cx)
		out[i].y = cy + float32(s)*(p.y-cy)
	}
	return out
}

func addPixelPath(r *vector.Rasterizer, pts []pixelPoint) {
	if len(pts) < 3 {
		return
	}
	r.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		r.LineTo(p.x, p.y)
	}
	r.ClosePath()
}

// RenderAllPOIs renders the shared overlay with every POI marker, a
// small name and elevation label next to each, and a category legend
// in the lower right corner.
func RenderAllPOIs(pc *model.POIClassification, bbox model.BBox, w, h int) (*image.RGBA, error) {
	c := NewCanvas(bbox, w, h)
	fontPx := ptToPx(poiLabelFontPt)

	for _, poi := range pc.POIs {
		style, ok := pc.Styles[poi.Category]
		if !ok {
			return nil, fmt.Errorf("poi %s: no style for category %q", poi.ID, poi.Category)
		}
		col, err := ParseHex(style.Color)
		if err != nil {
			return nil, fmt.Errorf("poi %s: %w", poi.ID, err)
		}

		x, y := c.Pixel(poi.Lon, poi.Lat)
		c.drawMarker(style.Marker, x, y, markerRadius(style.Size), col)

		label := poi.Name
		if poi.Elevation > 0 {
			label += fmt.Sprintf("\n%dm", poi.Elevation)
		}
		lx, ly := c.Pixel(poi.Lon+0.03, poi.Lat+0.02)
		drawLabelBox(c, lx, ly, label, fontPx, withAlpha(col, poiLabelAlpha))
	}

	drawLegend(c, pc)
	return c.Img, nil
}

// drawLabelBox draws a small translucent white box with text anchored
// bottom-left at the given position.
func drawLabelBox(c *Canvas, x, y float32, text string, fontPx float64, col color.NRGBA) {
	width := 0
	for _, line := range splitLines(text) {
		if lw := TextWidth(line, fontPx, false); lw > width {
			width = lw
		}
	}
	lineH := int(fontPx * 1.25)
	boxH := float32(lineH * countLines(text))
	pad := float32(fontPx * 0.25)

	white := withAlpha(mustHex("#FFFFFF"), poiLabelAlpha*0.5)
	c.FillRect(x-pad, y-boxH-pad, x+float32(width)+pad, y+pad, white)
	c.DrawText(x, y, text, fontPx, false, col, AlignStart, AlignEnd)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func countLines(s string) int {
	return len(splitLines(s))
}

// drawLegend renders the category legend in the lower right corner.
func drawLegend(c *Canvas, pc *model.POIClassification) {
	order := []model.POICategory{
		model.CategoryPeak, model.CategoryPass, model.CategoryTown, model.CategoryValley,
	}

	fontPx := ptToPx(legendFontPt)
	lineH := fontPx * 1.8
	pad := fontPx

	widest := 0
	rows := 0
	for _, cat := range order {
		style, ok := pc.Styles[cat]
		if !ok {
			continue
		}
		rows++
		entry := fmt.Sprintf("%s (%d)", style.Label, len(pc.POIsByCategory(cat)))
		if w := TextWidth(entry, fontPx, false); w > widest {
			widest = w
		}
	}
	if rows == 0 {
		return
	}

	markerCol := fontPx * 1.6
	boxW := float32(pad*2 + markerCol + float64(widest))
	boxH := float32(pad*2 + lineH*float64(rows))
	x1 := float32(c.w) - float32(pad)
	y1 := float32(c.h) - float32(pad)
	x0 := x1 - boxW
	y0 := y1 - boxH

	c.FillRect(x0, y0, x1, y1, withAlpha(mustHex("#FFFFFF"), 0.85))
	c.FillRect(x0, y0, x1, y0+2, legendEdgeColor)
	c.FillRect(x0, y1-2, x1, y1, legendEdgeColor)
	c.FillRect(x0, y0, x0+2, y1, legendEdgeColor)
	c.FillRect(x1-2, y0, x1, y1, legendEdgeColor)

	row := 0
	black := mustHex("#1A1A1A")
	for _, cat := range order {
		style, ok := pc.Styles[cat]
		if !ok {
			continue
		}
		col, err := ParseHex(style.Color)
		if err != nil {
			col = black
		}
		cy := y0 + float32(pad) + float32(lineH)*float32(row) + float32(lineH)/2
		c.drawMarker(style.Marker, x0+float32(pad)+float32(markerCol)/2, cy, markerRadius(style.Size), col)

		entry := fmt.Sprintf("%s (%d)", style.Label, len(pc.POIsByCategory(cat)))
		c.DrawText(x0+float32(pad)+float32(markerCol), cy, entry, fontPx, false, black, AlignStart, AlignCenter)
		row++
	}
}

// RenderPOIHighlight renders the overlay with a red circle around the
// target POI. The circle radius is fixed in degrees of latitude and
// widened in longitude so it stays round on the cos-corrected map.
func RenderPOIHighlight(poi model.POI, bbox model.BBox, w, h int) *image.RGBA {
	c := NewCanvas(bbox, w, h)

	ry := poiHighlightDeg * c.pxPerLat()
	latCorrection := 1 / math.Cos(poi.Lat*math.Pi/180)
	rx := poiHighlightDeg * latCorrection * float64(c.w) / bbox.Width()

	x, y := c.Pixel(poi.Lon, poi.Lat)
	c.StrokeEllipse(x, y, rx, ry, ptToPx(poiHighlightWidthPt), highlightColor)
	return c.Img
}

package render

import (
	"image"
	"sort"

	"golang.org/x/image/draw"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// RenderLakes rasterizes lake polygons onto a transparent layer.
// Lakes smaller than a square kilometer are dropped, they would only
// be noise at map scale.
func RenderLakes(fc *geojson.FeatureCollection, bbox model.BBox, w, h int) *image.RGBA {
	c := NewCanvas(bbox, w, h)
	for _, f := range fc.Features {
		for _, p := range f.Geometry.Polygons() {
			if p.AreaKm2() < lakeMinAreaKm2 {
				continue
			}
			c.FillPolygon(p, lakeFillColor)
			c.StrokePolygon(p, ptToPx(lakeEdgeWidthPt), lakeEdgeColor)
		}
	}
	return c.Img
}

// RenderRivers rasterizes river lines onto a transparent layer.
//
// Unnamed segments are dropped and the rest are grouped by name, so
// the length filter applies to whole rivers rather than to the short
// segments the map data splits them into. Lines are drawn at double
// resolution and downsampled for clean anti-aliased strokes.
func RenderRivers(fc *geojson.FeatureCollection, bbox model.BBox, w, h int) *image.RGBA {
	byName := make(map[string][]geojson.LineString)
	for _, f := range fc.Features {
		name := f.Properties["name"]
		if name == "" || f.Geometry.Type != "LineString" {
			continue
		}
		byName[name] = append(byName[name], f.Geometry.LineString)
	}

	names := make([]string, 0, len(byName))
	for name, lines := range byName {
		var total float64
		for _, l := range lines {
			total += l.LengthKm()
		}
		if total >= riverMinLengthKm {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	const ss = 2
	c := NewCanvas(bbox, w*ss, h*ss)
	width := ptToPx(riverWidthPt) * ss
	for _, name := range names {
		for _, line := range byName[name] {
			c.StrokeLine(line, width, riverColor)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), c.Img, c.Img.Bounds(), draw.Src, nil)
	return out
}

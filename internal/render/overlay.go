package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// GroupShapes indexes fetched group polygons by their classification
// ref so renderers can look up one group or its siblings.
type GroupShapes struct {
	cls   *model.Classification
	byRef map[string]*geojson.Feature
}

// NewGroupShapes indexes a feature collection for a classification.
// Features whose ref does not belong to the classification are
// ignored.
func NewGroupShapes(cls *model.Classification, fc *geojson.FeatureCollection) *GroupShapes {
	s := &GroupShapes{
		cls:   cls,
		byRef: make(map[string]*geojson.Feature),
	}
	valid := make(map[string]bool, len(cls.Groups))
	for _, g := range cls.Groups {
		valid[g.OSMRef] = true
	}
	for _, f := range fc.Features {
		if ref := f.Properties[cls.OSMTag]; valid[ref] {
			s.byRef[ref] = f
		}
	}
	return s
}

// ByRef returns the feature for a group ref, or nil when the fetch
// produced no polygon for it.
func (s *GroupShapes) ByRef(ref string) *geojson.Feature {
	return s.byRef[ref]
}

// Siblings returns the features sharing the given group's parent,
// excluding the group itself. Empty for single-level classifications.
func (s *GroupShapes) Siblings(ref string) []*geojson.Feature {
	if s.cls.ParentOSMTag == "" {
		return nil
	}
	self := s.byRef[ref]
	if self == nil {
		return nil
	}
	parent := self.Properties[s.cls.ParentOSMTag]
	if parent == "" {
		return nil
	}

	var out []*geojson.Feature
	for _, g := range s.cls.Groups {
		if g.OSMRef == ref {
			continue
		}
		if f := s.byRef[g.OSMRef]; f != nil && f.Properties[s.cls.ParentOSMTag] == parent {
			out = append(out, f)
		}
	}
	return out
}

// RenderPartition renders the overview overlay: every group filled in
// its division color with white shared borders and a bold ID label
// placed inside each group.
func RenderPartition(cls *model.Classification, shapes *GroupShapes, bbox model.BBox, w, h int) (*image.RGBA, error) {
	c := NewCanvas(bbox, w, h)

	divisionFill := make(map[string]string, len(cls.Divisions))
	for _, d := range cls.Divisions {
		divisionFill[d.Name] = d.Fill
	}

	type label struct {
		pt   geojson.Point
		text string
	}
	var labels []label

	for _, g := range cls.Groups {
		f := shapes.ByRef(g.OSMRef)
		if f == nil {
			continue
		}
		fill, err := ParseHex(divisionFill[g.Division])
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.ID, err)
		}
		mp := f.Geometry.Polygons()
		c.FillMultiPolygon(mp, withAlpha(fill, polygonAlpha))
		labels = append(labels, label{pt: labelPoint(mp.Largest()), text: g.ID})
	}

	// Borders go on top of every fill so shared edges read uniformly.
	// Only each group's outline is stroked; the edges between member
	// polygons merged into one group stay invisible.
	for _, g := range cls.Groups {
		if f := shapes.ByRef(g.OSMRef); f != nil {
			c.strokeOutline(f.Geometry.Polygons(), ptToPx(polygonBorderWidthPt), polygonBorderCol)
		}
	}

	white := mustHex("#FFFFFF")
	for _, l := range labels {
		x, y := c.Pixel(l.pt.Lon(), l.pt.Lat())
		c.DrawText(x, y, l.text, ptToPx(labelFontSizePt), true, white, AlignCenter, AlignCenter)
	}
	return c.Img, nil
}

// labelPoint picks an interior label anchor. The polygon centroid is
// used when it sits safely inside; otherwise the point farthest from
// the boundary.
func labelPoint(p geojson.Polygon) geojson.Point {
	b := p.Bounds()
	diag := math.Hypot(b.MaxLon-b.MinLon, b.MaxLat-b.MinLat)
	centroid := p.Centroid()
	for _, frac := range labelShrinkFractions {
		if p.BoundaryDistance(centroid) >= diag*frac {
			return centroid
		}
	}
	pole, _ := geojson.PoleOfInaccessibility(p, 0)
	return pole
}

// RenderGroupFront renders the question side overlay: red question
// marks packed into the group's shape on a transparent background.
func RenderGroupFront(shapes *GroupShapes, ref string, bbox model.BBox, w, h int) (*image.RGBA, error) {
	f := shapes.ByRef(ref)
	if f == nil {
		return nil, fmt.Errorf("no polygon for ref %q", ref)
	}
	c := NewCanvas(bbox, w, h)
	c.drawQuestionMarks(f.Geometry.Polygons(), bbox)
	return c.Img, nil
}

// RenderGroupBack renders the answer side overlay: the group outlined
// in red, with its siblings (same parent unit, if the classification
// is hierarchical) merged into one lightly filled shape whose
// internal edges are dashed for context.
func RenderGroupBack(cls *model.Classification, shapes *GroupShapes, ref string, bbox model.BBox, w, h int) (*image.RGBA, error) {
	f := shapes.ByRef(ref)
	if f == nil {
		return nil, fmt.Errorf("no polygon for ref %q", ref)
	}
	c := NewCanvas(bbox, w, h)

	if siblings := shapes.Siblings(ref); len(siblings) > 0 {
		fill := groupFillColor(cls, ref)
		var merged geojson.MultiPolygon
		for _, sib := range siblings {
			mp := sib.Geometry.Polygons()
			c.FillMultiPolygon(mp, withAlpha(fill, parentFillAlpha))
			merged = append(merged, mp...)
		}

		// The parent unit reads as one shape: solid outline around
		// the merged siblings, thin dashed lines where they touch.
		outline, internal := merged.Boundaries()
		solid := withAlpha(fill, parentFillAlpha)
		for _, line := range outline {
			c.StrokeLine(line, ptToPx(parentOutlineWidthPt), solid)
		}
		dashed := withAlpha(fill, parentEdgeAlpha)
		dashOn, dashOff := ptToPx(borderDashPt), ptToPx(borderGapPt)
		for _, line := range internal {
			c.StrokeDashed(line, ptToPx(parentEdgeWidthPt), dashOn, dashOff, dashed)
		}
	}

	c.strokeOutline(f.Geometry.Polygons(), ptToPx(groupOutlineWidthPt), groupOutlineColor)
	return c.Img, nil
}

// strokeOutline strokes the outline of the polygon set. Groups merged
// from several member polygons keep their shared edges unstroked.
func (c *Canvas) strokeOutline(m geojson.MultiPolygon, width float64, col color.NRGBA) {
	outline, _ := m.Boundaries()
	for _, line := range outline {
		c.StrokeLine(line, width, col)
	}
}

// groupFillColor returns the division fill color of the group with
// the given ref, gray when the lookup fails.
func groupFillColor(cls *model.Classification, ref string) color.NRGBA {
	for _, g := range cls.Groups {
		if g.OSMRef != ref {
			continue
		}
		for _, d := range cls.Divisions {
			if d.Name == g.Division {
				if c, err := ParseHex(d.Fill); err == nil {
					return c
				}
			}
		}
	}
	return color.NRGBA{R: 136, G: 136, B: 136, A: 255}
}

// RenderContext renders the shared context overlay: dashed country
// borders and city markers with labels on a transparent background.
func RenderContext(borders *geojson.FeatureCollection, cities []model.City, bbox model.BBox, w, h int) *image.RGBA {
	c := NewCanvas(bbox, w, h)

	dashOn, dashOff := ptToPx(borderDashPt), ptToPx(borderGapPt)
	for _, f := range borders.Features {
		if f.Geometry.Type == "LineString" {
			c.StrokeDashed(f.Geometry.LineString, ptToPx(borderWidthPt), dashOn, dashOff, borderColor)
		}
	}

	markerR := ptToPx(cityMarkerSizePt) / 2
	fontPx := ptToPx(cityLabelFontPt)
	for _, city := range cities {
		x, y := c.Pixel(city.Lon, city.Lat)
		c.FillCircle(x, y, markerR, cityColor)

		lx, ly := c.Pixel(city.Lon+city.DX, city.Lat+city.DY)
		ha := AlignStart
		if city.DX < 0 {
			ha = AlignEnd
		}
		c.DrawText(lx, ly, city.Name, fontPx, false, cityColor, ha, AlignEnd)
	}
	return c.Img
}

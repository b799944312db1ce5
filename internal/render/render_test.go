package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
)

func TestPixelDims(t *testing.T) {
	tests := []struct {
		name                string
		bbox                model.BBox
		longEdge, shortEdge int
		wantW, wantH        int
	}{
		{
			name:     "eastern alps landscape",
			bbox:     model.BBox{West: 9.05, East: 16.82, South: 45.2, North: 48.62},
			longEdge: 7680, shortEdge: 4320,
			wantW: 6704, wantH: 4320,
		},
		{
			name:     "western alps portrait clamped",
			bbox:     model.BBox{West: 4.5, East: 9.9, South: 42.8, North: 47.7},
			longEdge: 7680, shortEdge: 4320,
			wantW: 4320, wantH: 5568,
		},
		{
			name:     "equator square",
			bbox:     model.BBox{West: 0, East: 1, South: 0, North: 1},
			longEdge: 100, shortEdge: 80,
			wantW: 80, wantH: 80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := PixelDims(tt.bbox, tt.longEdge, tt.shortEdge)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("PixelDims() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#4A90D9")
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.NRGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 255}) {
		t.Errorf("got %+v", c)
	}
	if _, err := ParseHex("blue"); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestTerrainColorEndpoints(t *testing.T) {
	r, g, b := terrainColor(0)
	if r != 0.56 || g != 0.70 || b != 0.47 {
		t.Errorf("lowland tint = %v %v %v", r, g, b)
	}
	r, g, b = terrainColor(1)
	if r != 0.95 || g != 0.95 || b != 0.97 {
		t.Errorf("peak tint = %v %v %v", r, g, b)
	}
	r, _, _ = terrainColor(0.075)
	if r <= 0.56 || r >= 0.67 {
		t.Errorf("interpolated red %v out of range", r)
	}
}

func TestCanvasPixelMapping(t *testing.T) {
	bbox := model.BBox{West: 10, East: 12, South: 46, North: 48}
	c := NewCanvas(bbox, 200, 100)

	x, y := c.Pixel(10, 48)
	if x != 0 || y != 0 {
		t.Errorf("north-west corner = %v,%v", x, y)
	}
	x, y = c.Pixel(12, 46)
	if x != 200 || y != 100 {
		t.Errorf("south-east corner = %v,%v", x, y)
	}
	x, y = c.Pixel(11, 47)
	if x != 100 || y != 50 {
		t.Errorf("center = %v,%v", x, y)
	}

	lon, lat := c.Geo(100, 50)
	if lon != 11 || lat != 47 {
		t.Errorf("Geo(100, 50) = %v,%v", lon, lat)
	}
}

func unitSquare(w, e, s, n float64) geojson.Polygon {
	return geojson.Polygon{{
		{w, s}, {e, s}, {e, n}, {w, n}, {w, s},
	}}
}

func alphaAt(c *Canvas, x, y int) uint8 {
	return c.Img.Pix[c.Img.PixOffset(x, y)+3]
}

func TestFillPolygonWithHole(t *testing.T) {
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}
	c := NewCanvas(bbox, 100, 100)

	p := unitSquare(0.1, 0.9, 0.1, 0.9)
	p = append(p, geojson.Ring{
		{0.4, 0.4}, {0.6, 0.4}, {0.6, 0.6}, {0.4, 0.6}, {0.4, 0.4},
	})
	c.FillPolygon(p, color.NRGBA{R: 255, A: 255})

	if a := alphaAt(c, 20, 50); a == 0 {
		t.Error("fill missing inside the polygon")
	}
	if a := alphaAt(c, 50, 50); a != 0 {
		t.Errorf("hole center painted, alpha %d", a)
	}
	if a := alphaAt(c, 2, 2); a != 0 {
		t.Errorf("outside painted, alpha %d", a)
	}
}

func TestStrokeDashed(t *testing.T) {
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}
	c := NewCanvas(bbox, 64, 64)

	line := []geojson.Point{{0, 0.875}, {1, 0.875}} // y = 8 px
	c.StrokeDashed(line, 4, 10, 10, color.NRGBA{B: 255, A: 255})

	if a := alphaAt(c, 5, 8); a == 0 {
		t.Error("dash segment not painted")
	}
	if a := alphaAt(c, 16, 8); a != 0 {
		t.Errorf("gap painted, alpha %d", a)
	}
}

func TestRenderLakesFiltersSmall(t *testing.T) {
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}
	fc := geojson.NewFeatureCollection()

	big := geojson.NewFeature(geojson.Geometry{Type: "Polygon", Polygon: unitSquare(0.4, 0.6, 0.4, 0.6)})
	pond := geojson.NewFeature(geojson.Geometry{Type: "Polygon", Polygon: unitSquare(0.196, 0.204, 0.796, 0.804)})
	fc.Append(big)
	fc.Append(pond)

	img := RenderLakes(fc, bbox, 100, 100)
	if _, _, _, a := img.At(50, 50).RGBA(); a == 0 {
		t.Error("large lake not rendered")
	}
	if _, _, _, a := img.At(20, 20).RGBA(); a != 0 {
		t.Error("sub-km2 pond should be filtered out")
	}
}

func TestRenderRiversFilters(t *testing.T) {
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}
	fc := geojson.NewFeatureCollection()

	long := geojson.NewFeature(geojson.Geometry{
		Type:       "LineString",
		LineString: geojson.LineString{{0.5, 0.2}, {0.5, 0.7}},
	})
	long.Properties["name"] = "Inn"
	short := geojson.NewFeature(geojson.Geometry{
		Type:       "LineString",
		LineString: geojson.LineString{{0.1, 0.1}, {0.1, 0.15}},
	})
	short.Properties["name"] = "Bach"
	unnamed := geojson.NewFeature(geojson.Geometry{
		Type:       "LineString",
		LineString: geojson.LineString{{0.8, 0.2}, {0.8, 0.7}},
	})
	fc.Append(long)
	fc.Append(short)
	fc.Append(unnamed)

	img := RenderRivers(fc, bbox, 100, 100)
	if _, _, _, a := img.At(50, 55).RGBA(); a == 0 {
		t.Error("long river not rendered")
	}
	if _, _, _, a := img.At(10, 87).RGBA(); a != 0 {
		t.Error("short river should be filtered out")
	}
	if _, _, _, a := img.At(80, 55).RGBA(); a != 0 {
		t.Error("unnamed segment should be dropped")
	}
}

func TestPackCircles(t *testing.T) {
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}
	shape := geojson.MultiPolygon{unitSquare(0.25, 0.75, 0.25, 0.75)}

	circles := packCircles(shape, bbox, 512, 512)
	if len(circles) == 0 {
		t.Fatal("no circles packed")
	}

	first := circles[0]
	if math.Abs(first.x-256) > 10 || math.Abs(first.y-256) > 10 {
		t.Errorf("first circle at %.0f,%.0f, want near 256,256", first.x, first.y)
	}
	if first.r < 110 || first.r > 135 {
		t.Errorf("first radius %.1f, want about a quarter of the grid", first.r)
	}
	for _, ci := range circles[1:] {
		if ci.r > first.r {
			t.Error("circles must shrink monotonically")
		}
	}
}

func testClassification() *model.Classification {
	return &model.Classification{
		Name:         "soiusa_sts",
		Title:        "Test",
		OSMTag:       "STS",
		ParentOSMTag: "SZ",
		Divisions: []model.Division{
			{Name: "Div", Fill: "#4A90D9", Border: "#2E5C8A", Label: "#FFFFFF"},
		},
		Groups: []model.MountainGroup{
			{ID: "15.I", Name: "A", Division: "Div", OSMRef: "A"},
			{ID: "15.II", Name: "B", Division: "Div", OSMRef: "B"},
			{ID: "16.I", Name: "C", Division: "Div", OSMRef: "C"},
		},
	}
}

func testShapes(cls *model.Classification) *GroupShapes {
	fc := geojson.NewFeatureCollection()
	add := func(ref, parent string, p geojson.Polygon) {
		f := geojson.NewFeature(geojson.Geometry{Type: "Polygon", Polygon: p})
		f.Properties[cls.OSMTag] = ref
		f.Properties[cls.ParentOSMTag] = parent
		fc.Append(f)
	}
	add("A", "15", unitSquare(0.1, 0.4, 0.1, 0.4))
	add("B", "15", unitSquare(0.4, 0.7, 0.1, 0.4))
	add("C", "16", unitSquare(0.1, 0.4, 0.6, 0.9))

	stray := geojson.NewFeature(geojson.Geometry{Type: "Polygon", Polygon: unitSquare(0.8, 0.9, 0.8, 0.9)})
	stray.Properties[cls.OSMTag] = "Z"
	fc.Append(stray)

	return NewGroupShapes(cls, fc)
}

func TestGroupShapes(t *testing.T) {
	cls := testClassification()
	shapes := testShapes(cls)

	if shapes.ByRef("A") == nil {
		t.Fatal("ref A not indexed")
	}
	if shapes.ByRef("Z") != nil {
		t.Error("refs outside the classification must be dropped")
	}

	sibs := shapes.Siblings("A")
	if len(sibs) != 1 || sibs[0].Properties[cls.OSMTag] != "B" {
		t.Errorf("siblings of A = %d entries, want just B", len(sibs))
	}
	if sibs := shapes.Siblings("C"); len(sibs) != 0 {
		t.Errorf("C has no siblings in parent 16, got %d", len(sibs))
	}
}

func TestRenderOverlays(t *testing.T) {
	cls := testClassification()
	shapes := testShapes(cls)
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}

	t.Run("partition", func(t *testing.T) {
		img, err := RenderPartition(cls, shapes, bbox, 128, 128)
		if err != nil {
			t.Fatal(err)
		}
		// Center of group A: lon 0.25, lat 0.75 from the top.
		if _, _, _, a := img.At(32, 96).RGBA(); a == 0 {
			t.Error("group A area not filled")
		}
		if _, _, _, a := img.At(110, 30).RGBA(); a != 0 {
			t.Error("area outside all groups painted")
		}
	})

	t.Run("group front", func(t *testing.T) {
		img, err := RenderGroupFront(shapes, "A", bbox, 128, 128)
		if err != nil {
			t.Fatal(err)
		}
		painted := false
		for y := 0; y < 128 && !painted; y++ {
			for x := 0; x < 128; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
					painted = true
					break
				}
			}
		}
		if !painted {
			t.Error("question mark overlay is empty")
		}
	})

	t.Run("group back", func(t *testing.T) {
		img, err := RenderGroupBack(cls, shapes, "A", bbox, 128, 128)
		if err != nil {
			t.Fatal(err)
		}
		// Outline runs along lon 0.1, lat 0.1..0.4.
		if _, _, _, a := img.At(13, 96).RGBA(); a == 0 {
			t.Error("group outline missing")
		}
	})

	t.Run("unknown ref", func(t *testing.T) {
		if _, err := RenderGroupBack(cls, shapes, "missing", bbox, 64, 64); err == nil {
			t.Error("expected error for unknown ref")
		}
	})
}

// Groups dissolved from several Gruppo members arrive as one
// multipolygon whose members repeat the shared edge. Strokes must
// follow the merged outline only, never the seams inside it.
func TestRenderMergedGroupStrokes(t *testing.T) {
	cls := &model.Classification{
		Name:   "soiusa_sz",
		Title:  "Test",
		OSMTag: "SZ",
		Divisions: []model.Division{
			{Name: "Div", Fill: "#4A90D9", Border: "#2E5C8A", Label: "#FFFFFF"},
		},
		Groups: []model.MountainGroup{
			{ID: "15", Name: "M", Division: "Div", OSMRef: "M"},
		},
	}

	// Two member squares meeting along lon 0.5, lat 0.2..0.8.
	merged := geojson.MultiPolygon{
		unitSquare(0.1, 0.5, 0.2, 0.8),
		unitSquare(0.5, 0.8, 0.2, 0.8),
	}
	f := geojson.NewFeature(geojson.Geometry{Type: "MultiPolygon", MultiPolygon: merged})
	f.Properties[cls.OSMTag] = "M"
	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	shapes := NewGroupShapes(cls, fc)
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}

	t.Run("group back", func(t *testing.T) {
		img, err := RenderGroupBack(cls, shapes, "M", bbox, 200, 200)
		if err != nil {
			t.Fatal(err)
		}
		// The seam between the members at lon 0.5 stays unstroked.
		if _, _, _, a := img.At(100, 100).RGBA(); a != 0 {
			t.Error("outline stroked along the members' shared edge")
		}
		// The merged outline at lon 0.1 is stroked.
		if _, _, _, a := img.At(20, 100).RGBA(); a == 0 {
			t.Error("outline missing on the group boundary")
		}
	})

	t.Run("partition", func(t *testing.T) {
		img, err := RenderPartition(cls, shapes, bbox, 200, 200)
		if err != nil {
			t.Fatal(err)
		}
		// Pixels on the seam carry the plain division fill, exactly
		// like the members' interior.
		seam := img.RGBAAt(100, 50)
		interior := img.RGBAAt(130, 50)
		if seam != interior {
			t.Errorf("seam pixel %v differs from interior fill %v", seam, interior)
		}
		if _, _, _, a := img.At(18, 100).RGBA(); a == 0 {
			t.Error("white border missing on the group boundary")
		}
	})
}

// The parent unit on a hierarchical back card reads as one shape: a
// continuous outline around the merged siblings rather than a dashed
// ring per member polygon.
func TestRenderGroupBackParentOutline(t *testing.T) {
	cls := &model.Classification{
		Name:         "soiusa_sts",
		Title:        "Test",
		OSMTag:       "STS",
		ParentOSMTag: "SZ",
		Divisions: []model.Division{
			{Name: "Div", Fill: "#4A90D9", Border: "#2E5C8A", Label: "#FFFFFF"},
		},
		Groups: []model.MountainGroup{
			{ID: "15.I", Name: "T", Division: "Div", OSMRef: "T"},
			{ID: "15.II", Name: "S1", Division: "Div", OSMRef: "S1"},
			{ID: "15.III", Name: "S2", Division: "Div", OSMRef: "S2"},
		},
	}

	fc := geojson.NewFeatureCollection()
	add := func(ref string, p geojson.Polygon) {
		f := geojson.NewFeature(geojson.Geometry{Type: "Polygon", Polygon: p})
		f.Properties[cls.OSMTag] = ref
		f.Properties[cls.ParentOSMTag] = "15"
		fc.Append(f)
	}
	add("T", unitSquare(0.1, 0.3, 0.1, 0.3))
	add("S1", unitSquare(0.4, 0.6, 0.4, 0.9))
	add("S2", unitSquare(0.6, 0.8, 0.4, 0.9))
	shapes := NewGroupShapes(cls, fc)
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}

	img, err := RenderGroupBack(cls, shapes, "T", bbox, 200, 200)
	if err != nil {
		t.Fatal(err)
	}

	// Sample just outside the merged siblings' left boundary at lon
	// 0.4. Only the solid outline reaches there; with a dashed ring
	// per sibling some of these pixels would stay empty.
	for y := 30; y <= 110; y += 10 {
		if _, _, _, a := img.At(77, y).RGBA(); a == 0 {
			t.Errorf("parent outline broken at y=%d", y)
		}
	}
	// The siblings' own seam at lon 0.6 must not reach outside the
	// unit: above the merged shape the overlay stays empty.
	if _, _, _, a := img.At(120, 10).RGBA(); a != 0 {
		t.Error("stroke above the parent unit")
	}
}

func TestLabelPoint(t *testing.T) {
	square := unitSquare(0, 1, 0, 1)
	pt := labelPoint(square)
	if math.Abs(pt.Lon()-0.5) > 1e-9 || math.Abs(pt.Lat()-0.5) > 1e-9 {
		t.Errorf("square label at %v, want centroid", pt)
	}

	// U shape whose centroid falls into the gap between the arms.
	u := geojson.Polygon{{
		{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 0.6}, {1, 0.6}, {1, 3}, {0, 3}, {0, 0},
	}}
	pt = labelPoint(u)
	if !u.Contains(pt) {
		t.Errorf("label point %v outside the polygon", pt)
	}
}

func TestRenderPOIHighlight(t *testing.T) {
	poi := model.POI{ID: "peak_01", Name: "Test", Category: model.CategoryPeak, Lon: 0.5, Lat: 0.5}
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}

	img := RenderPOIHighlight(poi, bbox, 200, 200)
	if _, _, _, a := img.At(116, 100).RGBA(); a == 0 {
		t.Error("highlight ring not painted east of the center")
	}
	if _, _, _, a := img.At(100, 100).RGBA(); a != 0 {
		t.Error("circle interior should stay transparent")
	}
}

func TestRenderAllPOIs(t *testing.T) {
	pc := &model.POIClassification{
		Name:  "pois",
		Title: "Test POIs",
		Styles: map[model.POICategory]model.CategoryStyle{
			model.CategoryPeak: {Marker: model.MarkerTriangle, Color: "#B22222", Size: 7, Label: "Gipfel"},
			model.CategoryPass: {Marker: model.MarkerCircle, Color: "#2E86C1", Size: 6, Label: "Pass"},
		},
		POIs: []model.POI{
			{ID: "peak_01", Name: "Spitze", Category: model.CategoryPeak, Lon: 0.3, Lat: 0.6, Elevation: 3000},
			{ID: "pass_01", Name: "Joch", Category: model.CategoryPass, Lon: 0.7, Lat: 0.4},
		},
	}
	bbox := model.BBox{West: 0, East: 1, South: 0, North: 1}

	img, err := RenderAllPOIs(pc, bbox, 256, 256)
	if err != nil {
		t.Fatal(err)
	}
	// Marker at lon 0.3, lat 0.6 -> pixel 76, 102.
	if _, _, _, a := img.At(76, 102).RGBA(); a == 0 {
		t.Error("peak marker not painted")
	}
	// Legend occupies the lower right corner.
	if _, _, _, a := img.At(210, 210).RGBA(); a == 0 {
		t.Error("legend not painted")
	}
}

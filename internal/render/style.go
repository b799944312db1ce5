package render

import (
	"fmt"
	"image/color"
)

// All maps are rendered at the resolution of a 480 dpi print, so the
// pt-based stroke widths and font sizes below match the large raster
// dimensions. ptToPx converts them.
const renderDPI = 480.0

// Terrain shading.
const (
	hillshadeAzimuth  = 315.0
	hillshadeAltitude = 45.0
	hillshadeVertExag = 0.05
	maxTintElevation  = 4200.0
)

// Water styling.
const (
	riverWidthPt     = 0.4
	riverMinLengthKm = 20.0
	lakeEdgeWidthPt  = 0.3
	lakeMinAreaKm2   = 1.0
)

// Country borders.
const (
	borderWidthPt = 0.6
	borderDashPt  = 2.2
	borderGapPt   = 1.0
)

// Group polygon overlays.
const (
	polygonAlpha         = 0.55
	polygonBorderWidthPt = 0.8
	groupOutlineWidthPt  = 2.0
	parentFillAlpha      = 0.25
	parentOutlineWidthPt = 1.4
	parentEdgeAlpha      = 0.45
	parentEdgeWidthPt    = 0.8
	labelFontSizePt      = 11.0
)

// labelShrinkFractions are the interior margins tried when placing a
// group ID label, as fractions of the polygon's bounding diagonal.
var labelShrinkFractions = [...]float64{0.10, 0.06, 0.03, 0.01}

// Question-mark circle packing.
const (
	qmarkFontSizeMinPt  = 14.0
	qmarkFillFactor     = 0.85
	qmarkMinRadiusRatio = 0.45
	qmarkMaxRestArea    = 0.40
	qmarkMinRadiusDeg   = 0.008
	qmarkMaxCircles     = 20
)

// Cities.
const (
	cityMarkerSizePt = 3.5
	cityLabelFontPt  = 8.0
)

// POI overlays.
const (
	poiEdgeWidthPt      = 0.3
	poiLabelFontPt      = 3.5
	poiLabelAlpha       = 0.5
	poiHighlightDeg     = 0.08
	poiHighlightWidthPt = 2.5
	legendFontPt        = 6.0
)

var (
	oceanColor        = mustHex("#c6ddf0")
	riverColor        = mustHex("#4A7FB5")
	lakeFillColor     = mustHex("#7FAFCF")
	lakeEdgeColor     = mustHex("#4A7FB5")
	borderColor       = mustHex("#555555")
	polygonBorderCol  = mustHex("#FFFFFF")
	groupOutlineColor = mustHex("#cc0000")
	highlightColor    = mustHex("#CC0000")
	cityColor         = mustHex("#1A1A1A")
	legendEdgeColor   = mustHex("#cccccc")
)

// terrainStops is the hypsometric tint ramp: green lowlands over brown
// mid elevations to white peaks. Positions are fractions of
// maxTintElevation.
var terrainStops = []struct {
	pos     float64
	r, g, b float64
}{
	{0.00, 0.56, 0.70, 0.47},
	{0.15, 0.67, 0.78, 0.52},
	{0.30, 0.80, 0.78, 0.55},
	{0.45, 0.82, 0.72, 0.50},
	{0.60, 0.74, 0.60, 0.44},
	{0.75, 0.65, 0.52, 0.42},
	{0.88, 0.78, 0.75, 0.73},
	{1.00, 0.95, 0.95, 0.97},
}

// terrainColor interpolates the tint ramp at t in [0, 1].
func terrainColor(t float64) (r, g, b float64) {
	if t <= terrainStops[0].pos {
		s := terrainStops[0]
		return s.r, s.g, s.b
	}
	for i := 1; i < len(terrainStops); i++ {
		if t <= terrainStops[i].pos {
			lo, hi := terrainStops[i-1], terrainStops[i]
			f := (t - lo.pos) / (hi.pos - lo.pos)
			return lo.r + f*(hi.r-lo.r), lo.g + f*(hi.g-lo.g), lo.b + f*(hi.b-lo.b)
		}
	}
	s := terrainStops[len(terrainStops)-1]
	return s.r, s.g, s.b
}

// ptToPx converts a size in typographic points to output pixels.
func ptToPx(pt float64) float64 {
	return pt * renderDPI / 72.0
}

// ParseHex parses "#RRGGBB" into an opaque color.
func ParseHex(s string) (color.NRGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func mustHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// withAlpha returns c with its alpha set to a fraction in [0, 1].
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(a*255 + 0.5)
	return c
}

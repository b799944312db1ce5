package render

import (
	"image"
	"math"

	"github.com/peaksoaring/alpdeck/internal/dem"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// RenderTerrain renders the opaque hillshade layer: hypsometric tint
// shaded by an illumination model, with cells at or below sea level
// painted as ocean. The returned mask is white where ocean was
// painted, later used to clip rivers at the coastline.
func RenderTerrain(m *dem.Mosaic, bbox model.BBox, w, h int) (*image.RGBA, *image.Gray) {
	elev := sampleElevations(m, bbox, w, h)
	shade := illumination(elev, w, h)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	mask := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			off := img.PixOffset(x, y)

			if elev[i] <= 0 {
				img.Pix[off+0] = oceanColor.R
				img.Pix[off+1] = oceanColor.G
				img.Pix[off+2] = oceanColor.B
				img.Pix[off+3] = 255
				mask.Pix[y*mask.Stride+x] = 255
				continue
			}

			t := math.Min(elev[i], maxTintElevation) / maxTintElevation
			r, g, b := terrainColor(t)
			r, g, b = softLight(r, g, b, shade[i])
			img.Pix[off+0] = uint8(clamp01(r)*255 + 0.5)
			img.Pix[off+1] = uint8(clamp01(g)*255 + 0.5)
			img.Pix[off+2] = uint8(clamp01(b)*255 + 0.5)
			img.Pix[off+3] = 255
		}
	}
	return img, mask
}

// sampleElevations fills a w x h grid with bilinear DEM samples, row 0
// at the north edge.
func sampleElevations(m *dem.Mosaic, bbox model.BBox, w, h int) []float64 {
	elev := make([]float64, w*h)
	for y := 0; y < h; y++ {
		lat := bbox.North - (float64(y)+0.5)/float64(h)*bbox.Height()
		for x := 0; x < w; x++ {
			lon := bbox.West + (float64(x)+0.5)/float64(w)*bbox.Width()
			elev[y*w+x] = m.Elevation(lon, lat)
		}
	}
	return elev
}

// illumination computes a per-pixel shading intensity in [0, 1] from a
// light at the configured azimuth and altitude, normalized over the
// whole grid so flat regions sit mid-gray.
func illumination(elev []float64, w, h int) []float64 {
	azimuth := hillshadeAzimuth * math.Pi / 180
	altitude := hillshadeAltitude * math.Pi / 180

	out := make([]float64, w*h)
	lo, hi := math.Inf(1), math.Inf(-1)

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= h {
			y = h - 1
		}
		e := elev[y*w+x]
		if e < 0 {
			return 0
		}
		return math.Min(e, maxTintElevation)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dzdx := (at(x+1, y) - at(x-1, y)) / 2 * hillshadeVertExag
			dzdy := (at(x, y+1) - at(x, y-1)) / 2 * hillshadeVertExag

			slope := math.Atan(math.Hypot(dzdx, dzdy))
			aspect := math.Atan2(dzdy, -dzdx)
			v := math.Sin(altitude)*math.Cos(slope) +
				math.Cos(altitude)*math.Sin(slope)*math.Cos(azimuth-math.Pi/2-aspect)

			out[y*w+x] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	// Stretch to the full [0, 1] range like a printed relief shading.
	span := hi - lo
	if span < 1e-9 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i := range out {
		out[i] = (out[i] - lo) / span
	}
	return out
}

// softLight blends a color with a shading intensity using the pegtop
// soft-light formula, which keeps midtones saturated.
func softLight(r, g, b, intensity float64) (float64, float64, float64) {
	blend := func(c float64) float64 {
		return 2*intensity*c + (1-2*intensity)*c*c
	}
	return blend(r), blend(g), blend(b)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

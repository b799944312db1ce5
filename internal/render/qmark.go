package render

import (
	"image/color"
	"math"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// qmarkGridWidth is the coarse grid resolution used for circle
// packing. Distances are computed in grid cells, not full-size pixels.
const qmarkGridWidth = 512

type packedCircle struct {
	// center and radius in grid cells
	x, y, r float64
}

// packCircles greedily covers the group shape with inscribed circles:
// repeatedly find the deepest interior cell, place a circle of that
// depth, carve it out, and continue until the next circle would be too
// small relative to the first one and most of the area is covered.
func packCircles(shape geojson.MultiPolygon, bbox model.BBox, w, h int) []packedCircle {
	gw := qmarkGridWidth
	gh := gw * h / w
	if gh < 1 {
		gh = 1
	}

	inside := rasterizeShape(shape, bbox, gw, gh)
	total := countTrue(inside)
	if total == 0 {
		return nil
	}

	// Minimum radius in cells, converted from degrees of latitude.
	cellPerDeg := float64(gh) / bbox.Height()
	minRadius := qmarkMinRadiusDeg * cellPerDeg

	var circles []packedCircle
	var rMax float64

	for len(circles) < qmarkMaxCircles {
		dist := chamferDistance(inside, gw, gh)

		best, bx, by := 0.0, 0, 0
		for y := 0; y < gh; y++ {
			for x := 0; x < gw; x++ {
				if d := dist[y*gw+x]; d > best {
					best, bx, by = d, x, y
				}
			}
		}
		if best < minRadius {
			break
		}

		if rMax == 0 {
			rMax = best
		} else if best/rMax < qmarkMinRadiusRatio {
			rest := float64(countTrue(inside)) / float64(total)
			if rest <= qmarkMaxRestArea {
				break
			}
		}

		circles = append(circles, packedCircle{x: float64(bx), y: float64(by), r: best})
		carveCircle(inside, gw, gh, bx, by, best)
	}
	return circles
}

// rasterizeShape renders the shape into a boolean occupancy grid by
// reusing the canvas rasterizer at grid resolution.
func rasterizeShape(shape geojson.MultiPolygon, bbox model.BBox, gw, gh int) []bool {
	c := NewCanvas(bbox, gw, gh)
	c.FillMultiPolygon(shape, color.NRGBA{A: 255})

	inside := make([]bool, gw*gh)
	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			inside[y*gw+x] = c.Img.Pix[c.Img.PixOffset(x, y)+3] > 127
		}
	}
	return inside
}

// chamferDistance approximates the Euclidean distance from each inside
// cell to the nearest outside cell with a two-pass 3-4 chamfer sweep.
func chamferDistance(inside []bool, gw, gh int) []float64 {
	const inf = math.MaxInt32
	d := make([]int, gw*gh)
	for i, in := range inside {
		if in {
			d[i] = inf
		}
	}

	at := func(x, y int) int {
		if x < 0 || x >= gw || y < 0 || y >= gh {
			return 0 // outside the grid counts as outside the shape
		}
		return d[y*gw+x]
	}
	relax := func(x, y, cand int) {
		if cand < d[y*gw+x] {
			d[y*gw+x] = cand
		}
	}

	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			if d[y*gw+x] == 0 {
				continue
			}
			relax(x, y, at(x-1, y)+3)
			relax(x, y, at(x, y-1)+3)
			relax(x, y, at(x-1, y-1)+4)
			relax(x, y, at(x+1, y-1)+4)
		}
	}
	for y := gh - 1; y >= 0; y-- {
		for x := gw - 1; x >= 0; x-- {
			if d[y*gw+x] == 0 {
				continue
			}
			relax(x, y, at(x+1, y)+3)
			relax(x, y, at(x, y+1)+3)
			relax(x, y, at(x+1, y+1)+4)
			relax(x, y, at(x-1, y+1)+4)
		}
	}

	out := make([]float64, gw*gh)
	for i, v := range d {
		out[i] = float64(v) / 3
	}
	return out
}

func carveCircle(inside []bool, gw, gh, cx, cy int, r float64) {
	x0 := int(math.Max(0, float64(cx)-r-1))
	x1 := int(math.Min(float64(gw-1), float64(cx)+r+1))
	y0 := int(math.Max(0, float64(cy)-r-1))
	y1 := int(math.Min(float64(gh-1), float64(cy)+r+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy <= r*r {
				inside[y*gw+x] = false
			}
		}
	}
}

func countTrue(b []bool) int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

// drawQuestionMarks draws one red question mark per packed circle,
// sized to fill most of its circle.
func (c *Canvas) drawQuestionMarks(shape geojson.MultiPolygon, bbox model.BBox) {
	circles := packCircles(shape, bbox, c.w, c.h)
	scale := float64(c.w) / qmarkGridWidth

	minPx := ptToPx(qmarkFontSizeMinPt)
	for _, ci := range circles {
		size := 2 * ci.r * scale * qmarkFillFactor
		if size < minPx {
			size = minPx
		}
		x := float32(ci.x * scale)
		y := float32(ci.y * scale)
		c.DrawText(x, y, "?", size, true, groupOutlineColor, AlignCenter, AlignCenter)
	}
}

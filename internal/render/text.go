package render

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align positions text relative to its anchor point.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

var (
	fontOnce    sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font

	faceMu    sync.Mutex
	faceCache = map[faceKey]font.Face{}
)

type faceKey struct {
	sizePx int
	bold   bool
}

func loadFonts() {
	var err error
	regularFont, err = opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	boldFont, err = opentype.Parse(gobold.TTF)
	if err != nil {
		panic(err)
	}
}

// face returns a cached font face with the given pixel size.
func face(sizePx float64, bold bool) font.Face {
	fontOnce.Do(loadFonts)

	key := faceKey{sizePx: int(sizePx + 0.5), bold: bold}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[key]; ok {
		return f
	}

	src := regularFont
	if bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    float64(key.sizePx),
		DPI:     72, // size is already in pixels
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(err)
	}
	faceCache[key] = f
	return f
}

// DrawText draws (possibly multi-line) text anchored at the pixel
// position. ha aligns each line horizontally against x, va aligns the
// whole block vertically against y.
func (c *Canvas) DrawText(x, y float32, text string, sizePx float64, bold bool, col color.NRGBA, ha, va Align) {
	f := face(sizePx, bold)
	m := f.Metrics()
	lineH := m.Height.Ceil()
	lines := strings.Split(text, "\n")

	blockH := lineH * len(lines)
	var top int
	switch va {
	case AlignStart:
		top = int(y)
	case AlignCenter:
		top = int(y) - blockH/2
	case AlignEnd:
		top = int(y) - blockH
	}

	d := font.Drawer{
		Dst:  c.Img,
		Src:  image.NewUniform(col),
		Face: f,
	}
	for i, line := range lines {
		w := d.MeasureString(line).Ceil()
		var left int
		switch ha {
		case AlignStart:
			left = int(x)
		case AlignCenter:
			left = int(x) - w/2
		case AlignEnd:
			left = int(x) - w
		}
		baseline := top + i*lineH + m.Ascent.Ceil()
		d.Dot = fixed.P(left, baseline)
		d.DrawString(line)
	}
}

// TextWidth measures a single line at the given pixel size.
func TextWidth(text string, sizePx float64, bold bool) int {
	d := font.Drawer{Face: face(sizePx, bold)}
	return d.MeasureString(text).Ceil()
}

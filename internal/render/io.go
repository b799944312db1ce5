package render

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// SaveImage writes an image to path, creating parent directories. The
// format follows the file extension; quality applies to JPEG output.
//
// Example:
//
//	err := render.SaveImage("output/anki_images/map.jpg", img, 90)
func SaveImage(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return imaging.Save(img, path, imaging.JPEGQuality(quality))
}

// LoadImage reads an image from disk in any registered format.
func LoadImage(path string) (image.Image, error) {
	return imaging.Open(path)
}

// loadRGBA reads an image and converts it to RGBA for pixel access.
func loadRGBA(path string) (*image.RGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(img.Bounds())
	for y := out.Rect.Min.Y; y < out.Rect.Max.Y; y++ {
		for x := out.Rect.Min.X; x < out.Rect.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out, nil
}

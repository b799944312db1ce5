package render

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/peaksoaring/alpdeck/internal/dem"
	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// Basemap layer cache file names.
const (
	hillshadeLayerFile = "hillshade.png"
	oceanMaskFile      = "ocean_mask.png"
	lakesLayerFile     = "lakes.png"
	riversLayerFile    = "rivers.png"
)

// BasemapOptions configures one basemap build.
type BasemapOptions struct {
	// BBox is the rendered extent.
	BBox model.BBox

	// DEMDir holds the downloaded elevation tiles, DEMBBox the padded
	// extent they were fetched for.
	DEMDir  string
	DEMBBox model.BBox

	// LakesPath and RiversPath are hydrology GeoJSON files.
	LakesPath  string
	RiversPath string

	// LayersDir caches the intermediate layers between runs.
	LayersDir string

	// OutPath is the final basemap, its extension selects the format.
	OutPath string

	Width   int
	Height  int
	Quality int

	// Force re-renders layers and output even when cached.
	Force bool

	// Log receives progress lines. Optional.
	Log func(msg string)
}

func (o *BasemapOptions) logf(format string, args ...any) {
	if o.Log != nil {
		o.Log(fmt.Sprintf(format, args...))
	}
}

// BuildBasemap renders the shared opaque basemap: hillshade with
// hypsometric tint and ocean, lakes, and rivers.
//
// Each layer is cached as an independent PNG in LayersDir and only
// re-rendered when missing or forced. The composite step erases river
// pixels under lakes and ocean, then writes the final image.
func BuildBasemap(o BasemapOptions) error {
	if !o.Force {
		if _, err := os.Stat(o.OutPath); err == nil {
			o.logf("basemap exists: %s", filepath.Base(o.OutPath))
			return nil
		}
	}
	if err := os.MkdirAll(o.LayersDir, 0755); err != nil {
		return err
	}

	if err := o.buildHillshadeLayer(); err != nil {
		return fmt.Errorf("hillshade layer: %w", err)
	}
	if err := o.buildLakesLayer(); err != nil {
		return fmt.Errorf("lakes layer: %w", err)
	}
	if err := o.buildRiversLayer(); err != nil {
		return fmt.Errorf("rivers layer: %w", err)
	}
	return o.composite()
}

func (o *BasemapOptions) layerPath(name string) string {
	return filepath.Join(o.LayersDir, name)
}

func (o *BasemapOptions) layerCached(name string) bool {
	if o.Force {
		return false
	}
	_, err := os.Stat(o.layerPath(name))
	return err == nil
}

func (o *BasemapOptions) buildHillshadeLayer() error {
	if o.layerCached(hillshadeLayerFile) && o.layerCached(oceanMaskFile) {
		o.logf("hillshade cached")
		return nil
	}

	mosaic, err := dem.LoadMosaic(o.DEMDir, o.DEMBBox)
	if err != nil {
		return err
	}
	img, ocean := RenderTerrain(mosaic, o.BBox, o.Width, o.Height)

	if err := SaveImage(o.layerPath(hillshadeLayerFile), img, o.Quality); err != nil {
		return err
	}
	if err := SaveImage(o.layerPath(oceanMaskFile), ocean, o.Quality); err != nil {
		return err
	}
	o.logf("hillshade rendered (%dx%d)", o.Width, o.Height)
	return nil
}

func (o *BasemapOptions) buildLakesLayer() error {
	if o.layerCached(lakesLayerFile) {
		o.logf("lakes cached")
		return nil
	}
	fc, err := geojson.ReadFile(o.LakesPath)
	if err != nil {
		return err
	}
	img := RenderLakes(fc, o.BBox, o.Width, o.Height)
	if err := SaveImage(o.layerPath(lakesLayerFile), img, o.Quality); err != nil {
		return err
	}
	o.logf("lakes rendered (%d features)", len(fc.Features))
	return nil
}

func (o *BasemapOptions) buildRiversLayer() error {
	if o.layerCached(riversLayerFile) {
		o.logf("rivers cached")
		return nil
	}
	fc, err := geojson.ReadFile(o.RiversPath)
	if err != nil {
		return err
	}
	img := RenderRivers(fc, o.BBox, o.Width, o.Height)
	if err := SaveImage(o.layerPath(riversLayerFile), img, o.Quality); err != nil {
		return err
	}
	o.logf("rivers rendered (%d features)", len(fc.Features))
	return nil
}

func (o *BasemapOptions) composite() error {
	base, err := loadRGBA(o.layerPath(hillshadeLayerFile))
	if err != nil {
		return err
	}
	lakes, err := loadRGBA(o.layerPath(lakesLayerFile))
	if err != nil {
		return err
	}
	rivers, err := loadRGBA(o.layerPath(riversLayerFile))
	if err != nil {
		return err
	}
	ocean, err := LoadImage(o.layerPath(oceanMaskFile))
	if err != nil {
		return err
	}

	// Rivers must not cross lakes or the sea. Erasing their alpha at
	// pixel level is far cheaper than clipping the line geometry.
	b := rivers.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, la := lakes.At(x, y).RGBA()
			og, _, _, _ := ocean.At(x, y).RGBA()
			if la > 0 || og > 0x7fff {
				off := rivers.PixOffset(x, y)
				rivers.Pix[off+0] = 0
				rivers.Pix[off+1] = 0
				rivers.Pix[off+2] = 0
				rivers.Pix[off+3] = 0
			}
		}
	}

	draw.Draw(base, base.Bounds(), lakes, image.Point{}, draw.Over)
	draw.Draw(base, base.Bounds(), rivers, image.Point{}, draw.Over)

	if err := SaveImage(o.OutPath, base, o.Quality); err != nil {
		return err
	}
	o.logf("basemap written: %s", filepath.Base(o.OutPath))
	return nil
}

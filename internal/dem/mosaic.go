package dem

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/peaksoaring/alpdeck/internal/model"
)

// voidValue marks missing data in SRTM rasters.
const voidValue = -32768

// Mosaic is an in-memory elevation grid assembled from the tiles
// covering a bounding box. Missing tiles read as elevation zero, which
// holds for the only cells the mirrors omit, open sea.
type Mosaic struct {
	west, south    int // tile-aligned origin
	tilesX, tilesY int
	samples        int       // samples per tile edge, 3601 for 1-arcsecond SRTM
	tiles          [][]int16 // row-major by tile, nil for missing
}

// LoadMosaic reads every tile covering the bbox from dir.
//
// All present tiles must share one resolution; the common case is
// 3601x3601 1-arcsecond cells.
func LoadMosaic(dir string, bbox model.BBox) (*Mosaic, error) {
	tiles := TilesFor(bbox)
	if len(tiles) == 0 {
		return nil, fmt.Errorf("bbox %+v covers no tiles", bbox)
	}

	m := &Mosaic{
		west:   int(math.Floor(bbox.West)),
		south:  int(math.Floor(bbox.South)),
		tilesX: int(math.Floor(bbox.East)) - int(math.Floor(bbox.West)) + 1,
		tilesY: int(math.Floor(bbox.North)) - int(math.Floor(bbox.South)) + 1,
	}
	m.tiles = make([][]int16, m.tilesX*m.tilesY)

	for _, t := range tiles {
		data, err := readTile(filepath.Join(dir, t.FileName()))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", t.Name(), err)
		}

		samples := int(math.Sqrt(float64(len(data))))
		if samples*samples != len(data) {
			return nil, fmt.Errorf("tile %s: %d samples is not square", t.Name(), len(data))
		}
		if m.samples == 0 {
			m.samples = samples
		} else if samples != m.samples {
			return nil, fmt.Errorf("tile %s: %d samples per edge, others have %d", t.Name(), samples, m.samples)
		}

		m.tiles[(t.Lat-m.south)*m.tilesX+(t.Lon-m.west)] = data
	}

	if m.samples == 0 {
		return nil, fmt.Errorf("no elevation tiles found in %s", dir)
	}
	return m, nil
}

// readTile decompresses one HGT tile into big-endian int16 samples.
func readTile(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("odd byte count %d", len(raw))
	}

	data := make([]int16, len(raw)/2)
	for i := range data {
		data[i] = int16(binary.BigEndian.Uint16(raw[2*i:]))
	}
	return data, nil
}

// Elevation returns the bilinearly interpolated elevation in meters at
// lon/lat. Points outside the mosaic, void samples and missing tiles
// all read as zero.
func (m *Mosaic) Elevation(lon, lat float64) float64 {
	perDeg := float64(m.samples - 1)
	x := (lon - float64(m.west)) * perDeg
	y := (lat - float64(m.south)) * perDeg

	maxX := float64(m.tilesX) * perDeg
	maxY := float64(m.tilesY) * perDeg
	if x < 0 || y < 0 || x > maxX || y > maxY {
		return 0
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	e00 := m.node(x0, y0)
	e10 := m.node(x0+1, y0)
	e01 := m.node(x0, y0+1)
	e11 := m.node(x0+1, y0+1)

	return e00*(1-fx)*(1-fy) + e10*fx*(1-fy) + e01*(1-fx)*fy + e11*fx*fy
}

// node returns the elevation at integer grid position ix/iy, counted in
// samples from the mosaic's south-west corner.
func (m *Mosaic) node(ix, iy int) float64 {
	perTile := m.samples - 1

	if max := m.tilesX * perTile; ix > max {
		ix = max
	}
	if max := m.tilesY * perTile; iy > max {
		iy = max
	}

	tx := ix / perTile
	ty := iy / perTile
	if tx >= m.tilesX {
		tx = m.tilesX - 1
	}
	if ty >= m.tilesY {
		ty = m.tilesY - 1
	}

	data := m.tiles[ty*m.tilesX+tx]
	if data == nil {
		return 0
	}

	col := ix - tx*perTile
	rowFromSouth := iy - ty*perTile

	// HGT rows run north to south.
	row := perTile - rowFromSouth
	v := data[row*m.samples+col]
	if v == voidValue {
		return 0
	}
	return float64(v)
}

// Bounds returns the tile-aligned extent of the mosaic.
func (m *Mosaic) Bounds() model.BBox {
	return model.BBox{
		West:  float64(m.west),
		East:  float64(m.west + m.tilesX),
		South: float64(m.south),
		North: float64(m.south + m.tilesY),
	}
}

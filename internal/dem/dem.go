package dem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/peaksoaring/alpdeck/internal/httpclient"
	"github.com/peaksoaring/alpdeck/internal/model"
)

// Tile identifies one 1°x1° SRTM cell by its south-west corner.
type Tile struct {
	Lat int
	Lon int
}

// Name returns the SRTM tile name, e.g. "N47E011".
func (t Tile) Name() string {
	ns, lat := "N", t.Lat
	if lat < 0 {
		ns, lat = "S", -lat
	}
	ew, lon := "E", t.Lon
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%s%02d%s%03d", ns, lat, ew, lon)
}

// FileName returns the on-disk file name of the compressed tile.
func (t Tile) FileName() string {
	return t.Name() + ".hgt.gz"
}

// URLPath returns the tile's path below the skadi mirror root, which
// shards tiles into per-latitude folders.
func (t Tile) URLPath() string {
	return fmt.Sprintf("%s/%s", t.Name()[:3], t.FileName())
}

// TilesFor returns the tiles covering the bbox, west to east and south
// to north.
func TilesFor(bbox model.BBox) []Tile {
	var tiles []Tile
	for lat := int(math.Floor(bbox.South)); lat <= int(math.Floor(bbox.North)); lat++ {
		for lon := int(math.Floor(bbox.West)); lon <= int(math.Floor(bbox.East)); lon++ {
			tiles = append(tiles, Tile{Lat: lat, Lon: lon})
		}
	}
	return tiles
}

// Client downloads elevation tiles from an SRTM mirror.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// NewClient creates a tile download client.
func NewClient(baseURL string) *Client {
	return &Client{
		http:    httpclient.NewClient(2 * time.Minute),
		baseURL: baseURL,
	}
}

// Download fetches one tile into destDir unless it is already there.
//
// A missing tile on the mirror is not an error: cells that are fully
// open sea have no tile, and the mosaic reads them as elevation zero.
func (c *Client) Download(ctx context.Context, tile Tile, destDir string) error {
	dest := filepath.Join(destDir, tile.FileName())
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, tile.URLPath())
	err := c.http.DownloadFile(ctx, url, dest)
	if errors.Is(err, httpclient.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("download tile %s: %w", tile.Name(), err)
	}
	return nil
}

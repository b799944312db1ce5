package dem

import (
	"compress/gzip"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/peaksoaring/alpdeck/internal/model"
)

func TestTileName(t *testing.T) {
	tests := []struct {
		tile Tile
		name string
		path string
	}{
		{Tile{Lat: 47, Lon: 11}, "N47E011", "N47/N47E011.hgt.gz"},
		{Tile{Lat: 45, Lon: 4}, "N45E004", "N45/N45E004.hgt.gz"},
		{Tile{Lat: 9, Lon: 118}, "N09E118", "N09/N09E118.hgt.gz"},
		{Tile{Lat: -34, Lon: -58}, "S34W058", "S34/S34W058.hgt.gz"},
		{Tile{Lat: 0, Lon: 0}, "N00E000", "N00/N00E000.hgt.gz"},
	}
	for _, tt := range tests {
		if got := tt.tile.Name(); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}
		if got := tt.tile.URLPath(); got != tt.path {
			t.Errorf("URLPath() = %q, want %q", got, tt.path)
		}
	}
}

func TestTilesFor(t *testing.T) {
	bbox := model.BBox{West: 9.05, East: 16.82, South: 45.2, North: 48.62}.Pad(0.2)

	tiles := TilesFor(bbox)
	if len(tiles) != 40 {
		t.Fatalf("got %d tiles, want 40", len(tiles))
	}
	if tiles[0] != (Tile{Lat: 45, Lon: 8}) {
		t.Errorf("first tile = %v, want N45E008", tiles[0])
	}
	if last := tiles[len(tiles)-1]; last != (Tile{Lat: 48, Lon: 17}) {
		t.Errorf("last tile = %v, want N48E017", last)
	}
}

// writeTile writes a gzipped HGT file of samples x samples elevations,
// given in row-major order from the north edge down.
func writeTile(t *testing.T, dir string, tile Tile, values []int16) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, tile.FileName()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	for _, v := range values {
		if err := binary.Write(zw, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestMosaicElevation(t *testing.T) {
	dir := t.TempDir()

	// 3x3 tile, 0.5 degree node spacing.
	writeTile(t, dir, Tile{Lat: 47, Lon: 11}, []int16{
		0, 10, 20,
		30, 40, 50,
		60, 70, 80,
	})

	bbox := model.BBox{West: 11.1, East: 11.9, South: 47.1, North: 47.9}
	m, err := LoadMosaic(dir, bbox)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		lon, lat float64
		want     float64
	}{
		{11.0, 47.0, 60}, // south-west corner
		{11.5, 47.5, 40}, // center node
		{12.0, 48.0, 20}, // north-east corner
		{11.25, 47.25, 50}, // bilinear between four nodes
		{11.5, 47.75, 25},  // halfway up the center column
		{20.0, 47.5, 0},    // outside the mosaic
	}
	for _, tt := range tests {
		if got := m.Elevation(tt.lon, tt.lat); got != tt.want {
			t.Errorf("Elevation(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
	}
}

func TestMosaicVoidSamples(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, Tile{Lat: 47, Lon: 11}, []int16{
		100, 100, 100,
		100, -32768, 100,
		100, 100, 100,
	})

	m, err := LoadMosaic(dir, model.BBox{West: 11.1, East: 11.9, South: 47.1, North: 47.9})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Elevation(11.5, 47.5); got != 0 {
		t.Errorf("void sample reads %v, want 0", got)
	}
	if got := m.Elevation(11.0, 47.0); got != 100 {
		t.Errorf("corner reads %v, want 100", got)
	}
}

func TestMosaicMissingTile(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, Tile{Lat: 47, Lon: 11}, []int16{
		100, 100, 100,
		100, 100, 100,
		100, 100, 100,
	})

	// Covers N47E011 and the absent N47E012.
	m, err := LoadMosaic(dir, model.BBox{West: 11.1, East: 12.9, South: 47.1, North: 47.9})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Elevation(12.5, 47.5); got != 0 {
		t.Errorf("missing tile reads %v, want 0", got)
	}
	if got := m.Elevation(11.5, 47.5); got != 100 {
		t.Errorf("present tile reads %v, want 100", got)
	}
}

func TestLoadMosaicNoTiles(t *testing.T) {
	if _, err := LoadMosaic(t.TempDir(), model.BBox{West: 11.1, East: 11.9, South: 47.1, North: 47.9}); err == nil {
		t.Fatal("expected error for empty tile directory")
	}
}

func TestDownload(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/N47/N47E011.hgt.gz" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("tile-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := NewClient(srv.URL)
	tile := Tile{Lat: 47, Lon: 11}

	if err := client.Download(context.Background(), tile, dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, tile.FileName()))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "tile-bytes" {
		t.Errorf("file content = %q", data)
	}

	// A second call finds the file on disk and skips the request.
	if err := client.Download(context.Background(), tile, dir); err != nil {
		t.Fatal(err)
	}
	if requests != 1 {
		t.Errorf("server saw %d requests, want 1", requests)
	}
}

func TestDownloadMissingTileIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	tile := Tile{Lat: 0, Lon: 0}
	if err := NewClient(srv.URL).Download(context.Background(), tile, dir); err != nil {
		t.Fatalf("404 should not fail: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, tile.FileName())); !os.IsNotExist(err) {
		t.Error("no file should be written for a missing tile")
	}
}

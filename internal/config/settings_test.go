package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.DeckSizeLimitMB != 50 {
		t.Errorf("DeckSizeLimitMB = %d, want 50", s.DeckSizeLimitMB)
	}
	if s.BasemapLongEdge != 7680 || s.BasemapShortEdge != 4320 {
		t.Errorf("basemap edges = %d/%d", s.BasemapLongEdge, s.BasemapShortEdge)
	}
	if s.OverpassURL == "" || s.DEMTileURL == "" {
		t.Error("service URLs should have defaults")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.DataDir != "data" {
		t.Errorf("DataDir = %q, want defaults", s.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")

	s := DefaultSettings()
	s.OutDir = "/srv/decks"
	s.MaxConcurrentTiles = 8
	if err := s.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.OutDir != "/srv/decks" {
		t.Errorf("OutDir = %q", loaded.OutDir)
	}
	if loaded.MaxConcurrentTiles != 8 {
		t.Errorf("MaxConcurrentTiles = %d", loaded.MaxConcurrentTiles)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestDirectoryLayout(t *testing.T) {
	s := DefaultSettings()

	if got := s.GeoDir("ostalpen"); got != filepath.Join("data", "osm", "ostalpen") {
		t.Errorf("GeoDir = %q", got)
	}
	if got := s.ImagesDir("ostalpen_ave84"); got != filepath.Join("output", "images", "ostalpen_ave84") {
		t.Errorf("ImagesDir = %q", got)
	}
}

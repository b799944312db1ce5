package pipeline

import (
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"image"
	_ "image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/peaksoaring/alpdeck/internal/config"
	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
	"github.com/peaksoaring/alpdeck/internal/verify"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	dir := t.TempDir()
	s.DataDir = filepath.Join(dir, "data")
	s.OutDir = filepath.Join(dir, "output")
	return s
}

func TestResolve(t *testing.T) {
	m := NewManager(testSettings(t), nil)

	tests := []struct {
		region, system string
		wantSystem     string
		wantMerge      string
		wantPOI        bool
		wantErr        bool
	}{
		{"ostalpen", "ave84", "ave84", "", false, false},
		{"ostalpen", "", "ave84", "", false, false},
		{"ostalpen", "soiusa_sz", "soiusa_sz", "ostalpen_soiusa", false, false},
		{"ostalpen", "soiusa_sts", "soiusa_sts", "ostalpen_soiusa", false, false},
		{"ostalpen", "pois", "pois", "", true, false},
		{"westalpen", "", "soiusa_sz", "westalpen_soiusa", false, false},
		{"westalpen", "ave84", "", "", false, true},
		{"ostalpen", "bogus", "", "", false, true},
		{"atlantis", "", "", "", false, true},
	}
	for _, tt := range tests {
		job, err := m.Resolve(tt.region, tt.system)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Resolve(%s, %s): expected error", tt.region, tt.system)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%s, %s): %v", tt.region, tt.system, err)
			continue
		}
		if job.System != tt.wantSystem {
			t.Errorf("Resolve(%s, %s): system = %s, want %s", tt.region, tt.system, job.System, tt.wantSystem)
		}
		if job.MergeKey != tt.wantMerge {
			t.Errorf("Resolve(%s, %s): merge key = %q, want %q", tt.region, tt.system, job.MergeKey, tt.wantMerge)
		}
		if (job.POIDeck != nil) != tt.wantPOI {
			t.Errorf("Resolve(%s, %s): POI deck = %v", tt.region, tt.system, job.POIDeck != nil)
		}
	}
}

func TestOutName(t *testing.T) {
	m := NewManager(testSettings(t), nil)

	job, err := m.Resolve("ostalpen", "soiusa_sts")
	if err != nil {
		t.Fatal(err)
	}
	if got := job.OutName(); got != "ostalpen_soiusa" {
		t.Errorf("merged OutName = %s, want ostalpen_soiusa", got)
	}

	job, err = m.Resolve("ostalpen", "ave84")
	if err != nil {
		t.Fatal(err)
	}
	if got := job.OutName(); got != "ostalpen_ave84" {
		t.Errorf("OutName = %s, want ostalpen_ave84", got)
	}
}

func TestSkipExisting(t *testing.T) {
	m := NewManager(testSettings(t), nil)
	path := filepath.Join(t.TempDir(), "file.json")

	if m.skipExisting(path) {
		t.Error("missing file reported as existing")
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !m.skipExisting(path) {
		t.Error("existing file not skipped")
	}
	m.Force = true
	if m.skipExisting(path) {
		t.Error("Force did not override the skip")
	}
}

// writeDEMTile drops a flat synthetic elevation tile into dir.
func writeDEMTile(t *testing.T, dir, name string, samples int, elevation int16) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	for i := 0; i < samples*samples; i++ {
		if err := binary.Write(zw, binary.BigEndian, elevation); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDownloadDEM(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		zw := gzip.NewWriter(w)
		var v int16 = 100
		for i := 0; i < 9; i++ {
			binary.Write(zw, binary.BigEndian, v)
		}
		zw.Close()
	}))
	defer srv.Close()

	s := testSettings(t)
	s.DEMTileURL = srv.URL
	s.DEMPadding = 0
	m := NewManager(s, nil)

	job := &Job{
		Region: &model.Region{
			Name: "miniland",
			BBox: model.BBox{West: 11.2, East: 11.5, South: 47.2, North: 47.4},
		},
	}
	if err := m.downloadDEM(context.Background(), job); err != nil {
		t.Fatalf("downloadDEM: %v", err)
	}
	if len(requests) != 1 || requests[0] != "/N47/N47E011.hgt.gz" {
		t.Errorf("requests = %v", requests)
	}
	if _, err := os.Stat(filepath.Join(s.DEMDir(), "N47E011.hgt.gz")); err != nil {
		t.Errorf("tile not saved: %v", err)
	}
}

// miniJob builds a one-group region entirely from fixtures: a tiny
// bbox, a flat elevation tile and hand-written geodata on disk.
func miniJob(t *testing.T, s *config.Settings) *Job {
	t.Helper()
	region := &model.Region{
		Name:   "miniland",
		BBox:   model.BBox{West: 11.2, East: 11.5, South: 47.2, North: 47.4},
		Cities: []model.City{{Name: "Minidorf", Lon: 11.25, Lat: 47.25, DX: 0.01, DY: 0.01}},
	}
	cls := &model.Classification{
		Name:   "minigrp",
		Title:  "Minigruppen",
		OSMTag: "ref:mini",
		Divisions: []model.Division{
			{Name: "Haupt", Fill: "#88AA66", Border: "#FFFFFF", Label: "#FFFFFF"},
		},
		Groups: []model.MountainGroup{
			{ID: "M1", Name: "Minispitze", Division: "Haupt",
				HighPoint: "Minispitze (2000 m)", OSMRef: "M1"},
		},
	}
	job := &Job{
		Region: region,
		System: cls.Name,
		Deck:   &model.Deck{Region: region, Classification: cls},
	}

	// Geodata fixtures
	geoDir := s.GeoDir(region.Name)
	if err := os.MkdirAll(geoDir, 0o755); err != nil {
		t.Fatal(err)
	}
	square := geojson.Polygon{geojson.Ring{
		{11.25, 47.25}, {11.45, 47.25}, {11.45, 47.35}, {11.25, 47.35}, {11.25, 47.25},
	}}
	poly := geojson.NewFeature(geojson.Geometry{Type: "Polygon", Polygon: square})
	poly.Properties["ref:mini"] = "M1"
	polygons := geojson.NewFeatureCollection()
	polygons.Append(poly)
	if err := polygons.WriteFile(filepath.Join(geoDir, "polygons_minigrp.geojson")); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"borders.geojson", "rivers.geojson", "lakes.geojson"} {
		if err := geojson.NewFeatureCollection().WriteFile(filepath.Join(geoDir, name)); err != nil {
			t.Fatal(err)
		}
	}

	writeDEMTile(t, s.DEMDir(), "N47E011.hgt.gz", 11, 800)
	return job
}

func TestSingleGroupPipeline(t *testing.T) {
	s := testSettings(t)
	s.BasemapLongEdge = 96
	s.BasemapShortEdge = 48
	s.DEMPadding = 0
	s.RenderPadding = 0
	m := NewManager(s, nil)
	job := miniJob(t, s)
	ctx := context.Background()

	if err := m.Basemap(ctx, job); err != nil {
		t.Fatalf("Basemap: %v", err)
	}
	if err := m.Cards(ctx, job, nil); err != nil {
		t.Fatalf("Cards: %v", err)
	}

	dir := m.imagesDir(job)
	deck := job.Deck
	for _, name := range []string{
		deck.BasemapName(), deck.PartitionName(), deck.ContextName(),
		deck.GroupFrontName("M1"), deck.GroupBackName("M1"),
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("images dir holds %d files, want 5 (one card pair plus shared layers)", len(entries))
	}

	// All rasters share the configured resolution.
	if err := verify.ImageDims(dir); err != nil {
		t.Errorf("image dimensions: %v", err)
	}
	w, h := m.dims(job)
	f, err := os.Open(filepath.Join(dir, deck.BasemapName()))
	if err != nil {
		t.Fatal(err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != w || cfg.Height != h {
		t.Errorf("basemap is %dx%d, want %dx%d", cfg.Width, cfg.Height, w, h)
	}

	path, err := m.Build(ctx, job)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Verify(ctx, job, path); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	s := testSettings(t)
	m := NewManager(s, nil)
	job := miniJob(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Build(ctx, job); !errors.Is(err, context.Canceled) {
		t.Fatalf("Build on cancelled context = %v, want context.Canceled", err)
	}
}

func TestCardsIDFilter(t *testing.T) {
	s := testSettings(t)
	s.BasemapLongEdge = 96
	s.BasemapShortEdge = 48
	s.DEMPadding = 0
	s.RenderPadding = 0
	m := NewManager(s, nil)
	job := miniJob(t, s)

	if err := m.Cards(context.Background(), job, []string{"no-such-group"}); err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.imagesDir(job), job.Deck.GroupFrontName("M1"))); err == nil {
		t.Error("filtered-out group was rendered")
	}
}

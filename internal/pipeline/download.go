package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peaksoaring/alpdeck/internal/arcgis"
	"github.com/peaksoaring/alpdeck/internal/dem"
	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/model"
	"golang.org/x/sync/errgroup"
)

func (m *Manager) geoPath(job *Job, name string) string {
	return filepath.Join(m.settings.GeoDir(job.Region.Name), name)
}

func (m *Manager) polygonsPath(job *Job) string {
	return m.geoPath(job, "polygons_"+job.System+".geojson")
}

// Download fetches everything a job renders from: classification
// polygons, country borders, rivers, lakes and the elevation tiles.
// Existing files are kept unless Force is set.
func (m *Manager) Download(ctx context.Context, job *Job) error {
	// Water and border features are fetched past the map edge so
	// strokes do not clip at the frame.
	fetchBBox := job.Region.BBox.Pad(m.settings.RenderPadding)

	if job.Deck != nil {
		if err := m.downloadPolygons(ctx, job, fetchBBox); err != nil {
			return fmt.Errorf("polygons: %w", err)
		}
	}

	layers := []struct {
		name  string
		fetch func(context.Context, model.BBox) (*geojson.FeatureCollection, error)
	}{
		{"borders.geojson", m.overpass.FetchBorders},
		{"rivers.geojson", m.overpass.FetchRivers},
		{"lakes.geojson", m.overpass.FetchLakes},
	}
	for _, layer := range layers {
		path := m.geoPath(job, layer.name)
		if m.skipExisting(path) {
			continue
		}
		m.progressf(LevelInfo, "Fetching %s for %s", strings.TrimSuffix(layer.name, ".geojson"), job.Region.Name)
		fc, err := layer.fetch(ctx, fetchBBox)
		if err != nil {
			return fmt.Errorf("%s: %w", layer.name, err)
		}
		if err := fc.WriteFile(path); err != nil {
			return fmt.Errorf("%s: %w", layer.name, err)
		}
		m.progressf(LevelSuccess, "Saved %d features to %s", len(fc.Features), path)
	}

	return m.downloadDEM(ctx, job)
}

func (m *Manager) downloadPolygons(ctx context.Context, job *Job, bbox model.BBox) error {
	path := m.polygonsPath(job)
	if m.skipExisting(path) {
		return nil
	}
	cls := job.Deck.Classification

	var fc *geojson.FeatureCollection
	var err error
	if strings.HasPrefix(cls.Name, "soiusa") {
		// SOIUSA polygons come from the ARPA Piemonte FeatureServer;
		// OSM carries no complete sezione/sottosezione coverage.
		m.progressf(LevelInfo, "Fetching SOIUSA %s polygons from ArcGIS", cls.OSMTag)
		fc, err = m.arcgis.FetchLevel(ctx, cls.OSMTag, arcgis.RegionFilter[job.Region.Name])
		if err != nil {
			return err
		}
	} else {
		m.progressf(LevelInfo, "Fetching %s polygons from Overpass", cls.Title)
		var failed []string
		fc, failed, err = m.overpass.FetchPolygons(ctx, cls, bbox)
		if err != nil {
			return err
		}
		for _, ref := range failed {
			m.progressf(LevelWarning, "No polygon found for %s=%s", cls.OSMTag, ref)
		}
	}

	if err := fc.WriteFile(path); err != nil {
		return err
	}
	m.progressf(LevelSuccess, "Saved %d polygons to %s", len(fc.Features), path)
	return nil
}

func (m *Manager) downloadDEM(ctx context.Context, job *Job) error {
	demBBox := job.Region.BBox.Pad(m.settings.DEMPadding)
	tiles := dem.TilesFor(demBBox)
	destDir := m.settings.DEMDir()
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	m.progressf(LevelInfo, "Downloading %d elevation tiles", len(tiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentTiles)
	for _, tile := range tiles {
		tile := tile
		g.Go(func() error {
			if err := m.dem.Download(ctx, tile, destDir); err != nil {
				return fmt.Errorf("tile %s: %w", tile.Name(), err)
			}
			m.progressf(LevelVerbose, "Tile %s ready", tile.Name())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	m.progressf(LevelSuccess, "Elevation tiles complete")
	return nil
}

// skipExisting reports whether path already exists and Force is off,
// logging the skip.
func (m *Manager) skipExisting(path string) bool {
	if m.Force {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	m.progressf(LevelVerbose, "Already exists: %s", path)
	return true
}

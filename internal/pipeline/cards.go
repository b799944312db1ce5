package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/render"
)

// Cards renders the overlay images of a job: the shared partition and
// context layers plus the per-group (or per-POI) front and back
// overlays. ids restricts rendering to the listed group or POI IDs;
// empty means all.
func (m *Manager) Cards(ctx context.Context, job *Job, ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	if job.POIDeck != nil {
		return m.poiCards(job, want)
	}
	return m.groupCards(job, want)
}

func (m *Manager) groupCards(job *Job, want map[string]bool) error {
	deck := job.Deck
	cls := deck.Classification
	bbox := job.Region.BBox
	w, h := m.dims(job)
	dir := m.imagesDir(job)

	fc, err := geojson.ReadFile(m.polygonsPath(job))
	if err != nil {
		return fmt.Errorf("polygons: %w (run the download step first)", err)
	}
	shapes := render.NewGroupShapes(cls, fc)

	if path := filepath.Join(dir, deck.PartitionName()); !m.skipExisting(path) {
		m.progressf(LevelInfo, "Rendering partition overlay for %s", deck.Name())
		img, err := render.RenderPartition(cls, shapes, bbox, w, h)
		if err != nil {
			return fmt.Errorf("partition: %w", err)
		}
		if err := m.saveOverlay(path, img); err != nil {
			return err
		}
	}

	if err := m.contextCard(job, filepath.Join(dir, deck.ContextName())); err != nil {
		return err
	}

	rendered, failed := 0, 0
	for _, group := range cls.Groups {
		if len(want) > 0 && !want[group.ID] {
			continue
		}
		frontPath := filepath.Join(dir, deck.GroupFrontName(group.ID))
		backPath := filepath.Join(dir, deck.GroupBackName(group.ID))
		if m.skipExisting(frontPath) && m.skipExisting(backPath) {
			continue
		}

		front, err := render.RenderGroupFront(shapes, group.OSMRef, bbox, w, h)
		if err != nil {
			m.progressf(LevelWarning, "Group %s (%s): %v", group.ID, group.Name, err)
			failed++
			continue
		}
		back, err := render.RenderGroupBack(cls, shapes, group.OSMRef, bbox, w, h)
		if err != nil {
			m.progressf(LevelWarning, "Group %s (%s): %v", group.ID, group.Name, err)
			failed++
			continue
		}
		if err := m.saveOverlay(frontPath, front); err != nil {
			return err
		}
		if err := m.saveOverlay(backPath, back); err != nil {
			return err
		}
		rendered++
		m.progressf(LevelVerbose, "Rendered card pair for %s (%s)", group.ID, group.Name)
	}

	if failed > 0 {
		m.progressf(LevelWarning, "%d groups failed to render", failed)
	}
	m.progressf(LevelSuccess, "Card overlays for %s done (%d pairs)", deck.Name(), rendered)
	return nil
}

func (m *Manager) poiCards(job *Job, want map[string]bool) error {
	deck := job.POIDeck
	pc := deck.Classification
	bbox := job.Region.BBox
	w, h := m.dims(job)
	dir := m.imagesDir(job)

	if err := m.contextCard(job, filepath.Join(dir, deck.ContextName())); err != nil {
		return err
	}

	if path := filepath.Join(dir, deck.AllPOIsName()); !m.skipExisting(path) {
		m.progressf(LevelInfo, "Rendering all-POIs overlay for %s", deck.Name())
		img, err := render.RenderAllPOIs(pc, bbox, w, h)
		if err != nil {
			return fmt.Errorf("all-pois overlay: %w", err)
		}
		if err := m.saveOverlay(path, img); err != nil {
			return err
		}
	}

	rendered := 0
	for _, poi := range pc.POIs {
		if len(want) > 0 && !want[poi.ID] {
			continue
		}
		highlightPath := filepath.Join(dir, deck.HighlightName(poi.ID))
		backPath := filepath.Join(dir, deck.BackName(poi.ID))
		if m.skipExisting(highlightPath) && m.skipExisting(backPath) {
			continue
		}

		// Front and back both show the highlight ring; the name and
		// info live in the card HTML, not in the raster.
		circle := render.RenderPOIHighlight(poi, bbox, w, h)
		if err := m.saveOverlay(highlightPath, circle); err != nil {
			return err
		}
		if err := m.saveOverlay(backPath, circle); err != nil {
			return err
		}
		rendered++
		m.progressf(LevelVerbose, "Rendered overlays for %s (%s)", poi.ID, poi.Name)
	}

	m.progressf(LevelSuccess, "POI overlays for %s done (%d)", deck.Name(), rendered)
	return nil
}

// contextCard renders the borders+cities toggle layer shared by all
// cards of a deck.
func (m *Manager) contextCard(job *Job, path string) error {
	if m.skipExisting(path) {
		return nil
	}
	borders, err := geojson.ReadFile(m.geoPath(job, "borders.geojson"))
	if err != nil {
		return fmt.Errorf("borders: %w (run the download step first)", err)
	}
	m.progressf(LevelInfo, "Rendering context overlay")
	w, h := m.dims(job)
	img := render.RenderContext(borders, job.Region.Cities, job.Region.BBox, w, h)
	return m.saveOverlay(path, img)
}

func (m *Manager) saveOverlay(path string, img image.Image) error {
	if err := render.SaveImage(path, img, m.settings.BasemapQuality); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

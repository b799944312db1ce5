package pipeline

import (
	"context"
	"path/filepath"

	"github.com/peaksoaring/alpdeck/internal/render"
)

// dims returns the shared pixel dimensions of every image of the job.
func (m *Manager) dims(job *Job) (int, int) {
	return render.PixelDims(job.Region.BBox, m.settings.BasemapLongEdge, m.settings.BasemapShortEdge)
}

func (m *Manager) imagesDir(job *Job) string {
	return m.settings.ImagesDir(job.OutName())
}

func (m *Manager) basemapPath(job *Job) string {
	name := ""
	if job.POIDeck != nil {
		name = job.POIDeck.BasemapName()
	} else {
		name = job.Deck.BasemapName()
	}
	return filepath.Join(m.imagesDir(job), name)
}

// Basemap renders the shared terrain basemap of the job: hillshaded
// relief with hypsometric tint, lakes and rivers. Intermediate layers
// are cached per region so sibling systems reuse them.
func (m *Manager) Basemap(ctx context.Context, job *Job) error {
	w, h := m.dims(job)
	m.progressf(LevelInfo, "Rendering basemap for %s (%dx%d)", job.Title(), w, h)

	err := render.BuildBasemap(render.BasemapOptions{
		BBox:       job.Region.BBox,
		DEMDir:     m.settings.DEMDir(),
		DEMBBox:    job.Region.BBox.Pad(m.settings.DEMPadding),
		LakesPath:  m.geoPath(job, "lakes.geojson"),
		RiversPath: m.geoPath(job, "rivers.geojson"),
		LayersDir:  m.settings.LayersDir(job.Region.Name),
		OutPath:    m.basemapPath(job),
		Width:      w,
		Height:     h,
		Quality:    m.settings.BasemapQuality,
		Force:      m.Force,
		Log:        m.log(LevelVerbose),
	})
	if err != nil {
		return err
	}
	m.progressf(LevelSuccess, "Basemap ready: %s", m.basemapPath(job))
	return nil
}

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/peaksoaring/alpdeck/internal/arcgis"
	"github.com/peaksoaring/alpdeck/internal/catalog"
	"github.com/peaksoaring/alpdeck/internal/config"
	"github.com/peaksoaring/alpdeck/internal/dem"
	"github.com/peaksoaring/alpdeck/internal/model"
	"github.com/peaksoaring/alpdeck/internal/overpass"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates the deck pipeline: geodata download, basemap,
// card overlays, archive build and verification. One Manager serves
// any number of jobs.
type Manager struct {
	settings *config.Settings
	overpass *overpass.Client
	arcgis   *arcgis.Client
	dem      *dem.Client

	// Force rebuilds outputs that already exist.
	Force bool

	onProgress func(ProgressEvent)
}

// NewManager creates a pipeline Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings: settings,
		overpass: overpass.NewClient(
			settings.OverpassURL,
			time.Duration(settings.OverpassTimeout*float64(time.Second)),
			settings.DownloadMaxRetries,
			time.Duration(settings.DownloadRetryPause*float64(time.Second)),
		),
		arcgis:     arcgis.NewClient(settings.ArcGISURL, settings.DownloadMaxRetries),
		dem:        dem.NewClient(settings.DEMTileURL),
		onProgress: onProgress,
	}
}

// Job is one resolved region+system combination.
type Job struct {
	Region *model.Region
	System string

	// Exactly one of Deck and POIDeck is set.
	Deck    *model.Deck
	POIDeck *model.POIDeck

	// MergeKey is non-empty when the system ships inside a combined
	// archive with subdecks. Merged systems share one output
	// directory and one .apkg.
	MergeKey string
}

// OutName is the directory and archive base name: the merge key for
// combined decks, the plain deck name otherwise.
func (j *Job) OutName() string {
	if j.MergeKey != "" {
		return j.MergeKey
	}
	return j.deckName()
}

func (j *Job) deckName() string {
	if j.POIDeck != nil {
		return j.POIDeck.Name()
	}
	return j.Deck.Name()
}

// Title is the display title of the job's deck.
func (j *Job) Title() string {
	if j.POIDeck != nil {
		return j.POIDeck.Title()
	}
	return j.Deck.Title()
}

// Resolve looks up a region+system combination in the catalog. An
// empty system selects the region's default.
func (m *Manager) Resolve(regionName, system string) (*Job, error) {
	if system == "" {
		system = model.RegionDefaults[regionName]
	}
	if !model.IsValidCombination(regionName, system) {
		return nil, fmt.Errorf("region %q does not build system %q (valid: %s)",
			regionName, system, strings.Join(model.ValidCombinations[regionName], ", "))
	}
	region, err := catalog.Region(regionName)
	if err != nil {
		return nil, err
	}

	job := &Job{Region: region, System: system, MergeKey: mergeKeyFor(regionName, system)}

	if system == "pois" {
		pc, err := catalog.POIs()
		if err != nil {
			return nil, err
		}
		job.POIDeck = &model.POIDeck{Region: region, Classification: pc}
		return job, nil
	}

	cls, err := catalog.Classification(regionName, system)
	if err != nil {
		return nil, err
	}
	job.Deck = &model.Deck{Region: region, Classification: cls}
	return job, nil
}

// mergeKeyFor returns the merge key whose subdeck list contains the
// system, or "".
func mergeKeyFor(region, system string) string {
	for key, specs := range model.SubdeckMerge {
		if !strings.HasPrefix(key, region+"_") {
			continue
		}
		for _, spec := range specs {
			if spec.System == system {
				return key
			}
		}
	}
	return ""
}

func (m *Manager) progress(e ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(e)
	}
}

func (m *Manager) progressf(level ProgressLevel, format string, args ...any) {
	m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level})
}

// log adapts the progress callback to the Log hooks of the render and
// anki packages.
func (m *Manager) log(level ProgressLevel) func(string) {
	return func(msg string) {
		m.progress(ProgressEvent{Message: msg, Level: level})
	}
}

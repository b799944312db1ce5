package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds all configuration options.
type Settings struct {
	// Directory layout
	DataDir string `json:"data_dir"`
	OutDir  string `json:"out_dir"`

	// Geodata services
	OverpassURL        string  `json:"overpass_url"`
	ArcGISURL          string  `json:"arcgis_url"`
	DEMTileURL         string  `json:"dem_tile_url"`
	OverpassTimeout    float64 `json:"overpass_timeout"`
	HydrologyTimeout   float64 `json:"hydrology_timeout"`
	DownloadMaxRetries int     `json:"download_max_retries"`
	DownloadRetryPause float64 `json:"download_retry_pause"`
	MaxConcurrentTiles int     `json:"max_concurrent_tiles"`

	// Rendering
	BasemapLongEdge  int     `json:"basemap_long_edge"`
	BasemapShortEdge int     `json:"basemap_short_edge"`
	BasemapQuality   int     `json:"basemap_quality"`
	DEMPadding       float64 `json:"dem_padding"`
	RenderPadding    float64 `json:"render_padding"`

	// Packaging
	DeckSizeLimitMB int `json:"deck_size_limit_mb"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DataDir: "data",
		OutDir:  "output",

		OverpassURL:        "https://overpass-api.de/api/interpreter",
		ArcGISURL:          "https://webgis.arpa.piemonte.it/secure_apps/elevato_nostorico/rest/services/SOIUSA/FeatureServer",
		DEMTileURL:         "https://s3.amazonaws.com/elevation-tiles-prod/skadi",
		OverpassTimeout:    300,
		HydrologyTimeout:   180,
		DownloadMaxRetries: 3,
		DownloadRetryPause: 10,
		MaxConcurrentTiles: 4,

		BasemapLongEdge:  7680,
		BasemapShortEdge: 4320,
		BasemapQuality:   90,
		DEMPadding:       0.2,
		RenderPadding:    0.5,

		DeckSizeLimitMB: 50,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GeoDir returns the directory holding fetched GeoJSON for a region.
func (s *Settings) GeoDir(region string) string {
	return filepath.Join(s.DataDir, "osm", region)
}

// DEMDir returns the directory holding elevation tiles.
func (s *Settings) DEMDir() string {
	return filepath.Join(s.DataDir, "dem")
}

// LayersDir returns the basemap layer cache for a region.
func (s *Settings) LayersDir(region string) string {
	return filepath.Join(s.OutDir, "_basemap_layers", region)
}

// ImagesDir returns the card image directory for a deck.
func (s *Settings) ImagesDir(deckName string) string {
	return filepath.Join(s.OutDir, "images", deckName)
}

// DecksDir returns the directory the finished archives land in.
func (s *Settings) DecksDir() string {
	return filepath.Join(s.OutDir, "anki")
}

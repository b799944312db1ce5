// Package config provides configuration management for alpdeck.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - The on-disk directory layout for fetched data and outputs
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Fetches into ./data, renders into ./output
//	// Public Overpass and ARPA Piemonte endpoints
//	// 50 MB deck size ceiling
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.OutDir = "/srv/decks"
//	err := settings.Save("/path/to/config.json")
//
// # Directory layout
//
// The path helpers derive every working directory from DataDir and
// OutDir:
//
//	data/osm/<region>/            fetched GeoJSON
//	data/dem/                     elevation tiles
//	output/_basemap_layers/<region>/  cached basemap layers
//	output/images/<deck>/         rendered card images
//	output/anki/                  finished archives
package config

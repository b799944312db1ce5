package model

import "fmt"

// POICategory classifies a point of interest.
type POICategory string

const (
	CategoryPeak   POICategory = "peak"
	CategoryPass   POICategory = "pass"
	CategoryTown   POICategory = "town"
	CategoryValley POICategory = "valley"
)

// MarkerShape is the symbol drawn for a POI category.
type MarkerShape string

const (
	MarkerTriangle MarkerShape = "triangle"
	MarkerCircle   MarkerShape = "circle"
	MarkerSquare   MarkerShape = "square"
	MarkerDiamond  MarkerShape = "diamond"
)

// CategoryStyle holds the marker styling for one POI category.
type CategoryStyle struct {
	// Marker is the symbol shape.
	Marker MarkerShape

	// Color is the marker color as "#RRGGBB".
	Color string

	// Size is the marker size in points.
	Size float64

	// Label is the German category label shown on cards and in the
	// legend, e.g. "Gipfel".
	Label string
}

// POI is a named point of interest: a summit, pass, settlement or
// valley. Immutable reference data.
type POI struct {
	// ID is the short identifier used in filenames, e.g. "grossglockner".
	ID string

	// Name is the display name.
	Name string

	// Category determines the marker style.
	Category POICategory

	Lat float64
	Lon float64

	// Elevation in meters. Zero means unknown or not applicable.
	Elevation int

	// Subtitle is an optional context line for the card back,
	// e.g. "Höchster Berg Österreichs".
	Subtitle string
}

// Info returns the back-side info line: subtitle plus elevation.
func (p *POI) Info() string {
	switch {
	case p.Subtitle != "" && p.Elevation > 0:
		return fmt.Sprintf("%s, %d m", p.Subtitle, p.Elevation)
	case p.Subtitle != "":
		return p.Subtitle
	case p.Elevation > 0:
		return fmt.Sprintf("%d m", p.Elevation)
	default:
		return ""
	}
}

// POIClassification is the point-of-interest counterpart of a
// Classification: the POI list for a region plus category styling.
type POIClassification struct {
	// Name is the system identifier, always "pois".
	Name string

	// Title is the display title.
	Title string

	// Styles maps each category to its marker style.
	Styles map[POICategory]CategoryStyle

	// POIs in display order.
	POIs []POI
}

// POIByID returns the POI with the given ID.
func (c *POIClassification) POIByID(id string) (*POI, error) {
	for i := range c.POIs {
		if c.POIs[i].ID == id {
			return &c.POIs[i], nil
		}
	}
	return nil, fmt.Errorf("poi classification %s: no poi %q", c.Name, id)
}

// POIsByCategory returns the POIs of one category in order.
func (c *POIClassification) POIsByCategory(cat POICategory) []POI {
	var pois []POI
	for _, p := range c.POIs {
		if p.Category == cat {
			pois = append(pois, p)
		}
	}
	return pois
}

package model

import "fmt"

// Division is a named subdivision of a classification system, e.g. the
// AVE-84 Nordalpen or a SOIUSA settore. Every group belongs to exactly
// one division, and the division determines the polygon colors.
type Division struct {
	// Name is the display name, e.g. "Nördliche Ostalpen".
	Name string

	// Fill is the polygon fill color as "#RRGGBB".
	Fill string

	// Border is the polygon border color as "#RRGGBB".
	Border string

	// Label is the text color used for the group ID label.
	Label string
}

// MountainGroup is one classification unit: an AVE-84 group, a SOIUSA
// sezione or a sottosezione. Immutable reference data.
type MountainGroup struct {
	// ID is the short code shown on cards, e.g. "3b" or "SZ 15".
	ID string

	// Name is the display name, e.g. "Lechquellengebirge".
	Name string

	// Division is the name of the Division this group belongs to.
	Division string

	// HighPoint is the highest peak with its elevation,
	// e.g. "Großglockner (3798 m)".
	HighPoint string

	// OSMRef is the value matched against the classification's OSM tag
	// to find this group's polygon in the fetched data.
	OSMRef string

	// FallbackRelation is an OSM relation ID used when no relation in
	// the region carries the expected tag value. Zero means none.
	FallbackRelation int64
}

// Classification is one complete classification system for a region:
// its divisions, its groups, and the tag used to match polygons.
type Classification struct {
	// Name is the system identifier, e.g. "ave84" or "soiusa_sts".
	Name string

	// Title is the display title, e.g. "AVE Gebirgsgruppen".
	Title string

	// OSMTag is the GeoJSON property matched against MountainGroup.OSMRef,
	// e.g. "ref:aveo" or "SZ".
	OSMTag string

	// ParentOSMTag is the property naming the parent unit for two-level
	// systems (sottosezioni carry their sezione ref). Empty for
	// single-level systems.
	ParentOSMTag string

	// Divisions in display order.
	Divisions []Division

	// Groups in display order.
	Groups []MountainGroup
}

// GroupByID returns the group with the given ID.
func (c *Classification) GroupByID(id string) (*MountainGroup, error) {
	for i := range c.Groups {
		if c.Groups[i].ID == id {
			return &c.Groups[i], nil
		}
	}
	return nil, fmt.Errorf("classification %s: no group %q", c.Name, id)
}

// Division returns the division with the given name.
func (c *Classification) Division(name string) (*Division, error) {
	for i := range c.Divisions {
		if c.Divisions[i].Name == name {
			return &c.Divisions[i], nil
		}
	}
	return nil, fmt.Errorf("classification %s: no division %q", c.Name, name)
}

// GroupsByDivision returns the groups of one division in order.
func (c *Classification) GroupsByDivision(division string) []MountainGroup {
	var groups []MountainGroup
	for _, g := range c.Groups {
		if g.Division == division {
			groups = append(groups, g)
		}
	}
	return groups
}

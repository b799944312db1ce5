package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidCombinations lists the buildable classification systems per region.
var ValidCombinations = map[string][]string{
	"ostalpen":  {"ave84", "soiusa_sz", "soiusa_sts", "pois"},
	"westalpen": {"soiusa_sz", "soiusa_sts"},
}

// RegionDefaults maps each region to the system built when none is given.
var RegionDefaults = map[string]string{
	"ostalpen":  "ave84",
	"westalpen": "soiusa_sz",
}

// SubdeckSpec names one member of a merged deck and the Anki subdeck it
// lands in.
type SubdeckSpec struct {
	System string
	Label  string
}

// SubdeckMerge describes which systems are packed into a single archive
// with Anki subdecks (Parent::Child naming). The SOIUSA sezioni and
// sottosezioni of one region always ship together: the coarse level as
// "A Gliederung", the fine level as "B Details".
var SubdeckMerge = map[string][]SubdeckSpec{
	"ostalpen_soiusa": {
		{System: "soiusa_sz", Label: "A Gliederung"},
		{System: "soiusa_sts", Label: "B Details"},
	},
	"westalpen_soiusa": {
		{System: "soiusa_sz", Label: "A Gliederung"},
		{System: "soiusa_sts", Label: "B Details"},
	},
}

// IsValidCombination reports whether the region builds the given system.
func IsValidCombination(region, system string) bool {
	for _, s := range ValidCombinations[region] {
		if s == system {
			return true
		}
	}
	return false
}

// Deck pairs a Region with a Classification and generates the
// filenames of everything the pair produces.
//
// The filename prefix "ps_{region}_{system}" keeps media of different
// decks apart inside Anki's flat media folder.
//
// Example:
//
//	deck := &Deck{Region: region, Classification: cls}
//	deck.BasemapName()           // "ps_ostalpen_ave84_basemap.jpg"
//	deck.GroupFrontName("3b")    // "ps_ostalpen_ave84_group_3b_front.png"
type Deck struct {
	Region         *Region
	Classification *Classification
}

// Name returns the deck identifier, e.g. "ostalpen_ave84".
func (d *Deck) Name() string {
	return fmt.Sprintf("%s_%s", d.Region.Name, d.Classification.Name)
}

// Title returns the display title, e.g. "Ostalpen: AVE Gebirgsgruppen".
func (d *Deck) Title() string {
	return fmt.Sprintf("%s: %s", capitalize(d.Region.Name), d.Classification.Title)
}

// Prefix returns the media filename prefix for this deck.
func (d *Deck) Prefix() string {
	return fmt.Sprintf("ps_%s_%s", d.Region.Name, d.Classification.Name)
}

// BasemapName returns the shared basemap filename. The basemap is
// opaque and stored as JPEG; all overlays above it are transparent PNG.
func (d *Deck) BasemapName() string {
	return d.Prefix() + "_basemap.jpg"
}

// PartitionName returns the shared partition overlay filename
// (all groups colored by division, the Einteilung toggle layer).
func (d *Deck) PartitionName() string {
	return d.Prefix() + "_partition.png"
}

// ContextName returns the shared context overlay filename
// (city labels, the Kontext toggle layer).
func (d *Deck) ContextName() string {
	return d.Prefix() + "_context.png"
}

// GroupFrontName returns the front overlay filename for a group.
func (d *Deck) GroupFrontName(groupID string) string {
	return fmt.Sprintf("%s_group_%s_front.png", d.Prefix(), safeID(groupID))
}

// GroupBackName returns the back overlay filename for a group.
func (d *Deck) GroupBackName(groupID string) string {
	return fmt.Sprintf("%s_group_%s_back.png", d.Prefix(), safeID(groupID))
}

// ParentOverlayName returns the dissolved parent-outline overlay
// filename, rendered for two-level systems only.
func (d *Deck) ParentOverlayName(parentRef string) string {
	return fmt.Sprintf("%s_parent_%s.png", d.Prefix(), safeID(parentRef))
}

// POIDeck pairs a Region with a POIClassification.
//
// The card templates differ from polygon decks: "Wo ist X?" asks for a
// location, "Was ist das?" shows one. Both variants come from the same
// note.
type POIDeck struct {
	Region         *Region
	Classification *POIClassification
}

// Name returns the deck identifier, e.g. "ostalpen_pois".
func (d *POIDeck) Name() string {
	return fmt.Sprintf("%s_%s", d.Region.Name, d.Classification.Name)
}

// Title returns the display title.
func (d *POIDeck) Title() string {
	return fmt.Sprintf("%s: %s", capitalize(d.Region.Name), d.Classification.Title)
}

// Prefix returns the media filename prefix for this deck.
func (d *POIDeck) Prefix() string {
	return fmt.Sprintf("ps_%s_%s", d.Region.Name, d.Classification.Name)
}

// BasemapName returns the shared basemap filename.
func (d *POIDeck) BasemapName() string {
	return d.Prefix() + "_basemap.jpg"
}

// ContextName returns the shared context overlay filename.
func (d *POIDeck) ContextName() string {
	return d.Prefix() + "_context.png"
}

// AllPOIsName returns the shared overlay filename showing every POI
// marker plus the category legend.
func (d *POIDeck) AllPOIsName() string {
	return d.Prefix() + "_all_pois.png"
}

// HighlightName returns the highlight-circle overlay filename for a POI
// (the "Was ist das?" front).
func (d *POIDeck) HighlightName(poiID string) string {
	return fmt.Sprintf("%s_poi_%s_highlight.png", d.Prefix(), safeID(poiID))
}

// BackName returns the labeled back overlay filename for a POI.
func (d *POIDeck) BackName(poiID string) string {
	return fmt.Sprintf("%s_poi_%s_back.png", d.Prefix(), safeID(poiID))
}

// safeID makes a group or POI ID safe for use inside a filename.
func safeID(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
func SanitizeFileName(name string) string {
	// Replace invalid path/file characters
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	// Remove trailing dots
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Replace multiple whitespace with single space
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	// Remove trailing whitespace
	name = strings.TrimRight(name, " ")

	return name
}

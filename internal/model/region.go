package model

// BBox is a geographic bounding box in WGS84 degrees.
type BBox struct {
	West  float64
	East  float64
	South float64
	North float64
}

// Width returns the longitudinal extent in degrees.
func (b BBox) Width() float64 { return b.East - b.West }

// Height returns the latitudinal extent in degrees.
func (b BBox) Height() float64 { return b.North - b.South }

// MidLat returns the central latitude, used for aspect correction.
func (b BBox) MidLat() float64 { return (b.South + b.North) / 2 }

// Pad returns the box grown by deg degrees on every side.
func (b BBox) Pad(deg float64) BBox {
	return BBox{
		West:  b.West - deg,
		East:  b.East + deg,
		South: b.South - deg,
		North: b.North + deg,
	}
}

// Contains reports whether the point lon/lat lies inside the box.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.West && lon <= b.East && lat >= b.South && lat <= b.North
}

// City is a reference settlement drawn on context overlays for orientation.
//
// DX and DY shift the label away from the dot, in degrees, so labels
// don't collide with polygon borders or each other.
type City struct {
	Name string
	Lon  float64
	Lat  float64
	DX   float64
	DY   float64
}

// Projection holds Albers equal-area parameters for a region.
type Projection struct {
	CentralLongitude  float64
	CentralLatitude   float64
	StandardParallels [2]float64
}

// Region describes one study area: a bounding box, the projection used
// for its maps, and the city labels rendered on context overlays.
//
// Regions are immutable reference data loaded from the embedded catalog.
type Region struct {
	// Name is the region identifier, e.g. "ostalpen" or "westalpen".
	Name string

	// BBox is the data extent. Rendering and DEM downloads pad it
	// further, see the render and dem packages.
	BBox BBox

	// Projection is kept for metadata completeness; rendering uses a
	// simple equirectangular mapping with cosine aspect correction.
	Projection Projection

	// Cities are the orientation labels for context overlays.
	Cities []City
}

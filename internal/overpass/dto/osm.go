// Package dto holds the deserialized Overpass API response types.
package dto

// Response is the top-level Overpass JSON response.
type Response struct {
	Elements []Element `json:"elements"`
}

// Element is one OSM element: a node, way or relation.
//
// Which fields are populated depends on the output mode of the query:
// "out body; >; out skel qt;" delivers nodes/ways/relations separately,
// "out geom;" inlines coordinates into ways and relation members.
type Element struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`

	// Node position.
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`

	// Way node references (body output).
	Nodes []int64 `json:"nodes"`

	// Inline way geometry (geom output).
	Geometry []Coord `json:"geometry"`

	Tags    map[string]string `json:"tags"`
	Members []Member          `json:"members"`
}

// Member is one relation member.
type Member struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`

	// Inline geometry (geom output).
	Geometry []Coord `json:"geometry"`
}

// Coord is an inline coordinate from geom output.
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Name returns the element's "name" tag, falling back to the German
// variant when the plain one is missing.
func (e *Element) Name() string {
	if n := e.Tags["name"]; n != "" {
		return n
	}
	return e.Tags["name:de"]
}

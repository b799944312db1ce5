package catalog

import (
	"embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/peaksoaring/alpdeck/internal/model"
)

//go:embed data/*.toml
var dataFS embed.FS

// tomlClassification mirrors the on-disk classification table layout.
type tomlClassification struct {
	Name         string `toml:"name"`
	Title        string `toml:"title"`
	OSMTag       string `toml:"osm_tag"`
	ParentOSMTag string `toml:"parent_osm_tag"`

	Divisions []struct {
		Name   string `toml:"name"`
		Fill   string `toml:"fill"`
		Border string `toml:"border"`
		Label  string `toml:"label"`
	} `toml:"division"`

	Groups []struct {
		ID               string `toml:"id"`
		Name             string `toml:"name"`
		Division         string `toml:"division"`
		HighPoint        string `toml:"high_point"`
		OSMRef           string `toml:"osm_ref"`
		FallbackRelation int64  `toml:"fallback_relation"`
	} `toml:"group"`
}

type tomlRegion struct {
	Name string `toml:"name"`

	BBox struct {
		West  float64 `toml:"west"`
		East  float64 `toml:"east"`
		South float64 `toml:"south"`
		North float64 `toml:"north"`
	} `toml:"bbox"`

	Projection struct {
		CentralLongitude  float64    `toml:"central_longitude"`
		CentralLatitude   float64    `toml:"central_latitude"`
		StandardParallels [2]float64 `toml:"standard_parallels"`
	} `toml:"projection"`

	Cities []struct {
		Name string  `toml:"name"`
		Lon  float64 `toml:"lon"`
		Lat  float64 `toml:"lat"`
		DX   float64 `toml:"dx"`
		DY   float64 `toml:"dy"`
	} `toml:"city"`
}

type tomlPOIs struct {
	Name  string `toml:"name"`
	Title string `toml:"title"`

	Categories map[string]struct {
		Marker string  `toml:"marker"`
		Color  string  `toml:"color"`
		Size   float64 `toml:"size"`
		Label  string  `toml:"label"`
	} `toml:"category"`

	POIs []struct {
		ID        string  `toml:"id"`
		Name      string  `toml:"name"`
		Category  string  `toml:"category"`
		Lat       float64 `toml:"lat"`
		Lon       float64 `toml:"lon"`
		Elevation int     `toml:"elevation"`
		Subtitle  string  `toml:"subtitle"`
	} `toml:"poi"`
}

var (
	loadOnce sync.Once
	loadErr  error

	regions         map[string]*model.Region
	classifications map[string]*model.Classification
	pois            *model.POIClassification
)

// load decodes every embedded table exactly once.
func load() error {
	loadOnce.Do(func() {
		regions = make(map[string]*model.Region)
		classifications = make(map[string]*model.Classification)

		for _, name := range []string{"ostalpen", "westalpen"} {
			r, err := decodeRegion("data/region_" + name + ".toml")
			if err != nil {
				loadErr = err
				return
			}
			regions[name] = r
		}

		for _, key := range []string{
			"ostalpen_ave84",
			"ostalpen_soiusa_sz",
			"ostalpen_soiusa_sts",
			"westalpen_soiusa_sz",
			"westalpen_soiusa_sts",
		} {
			c, err := decodeClassification("data/" + key + ".toml")
			if err != nil {
				loadErr = err
				return
			}
			classifications[key] = c
		}

		p, err := decodePOIs("data/pois.toml")
		if err != nil {
			loadErr = err
			return
		}
		pois = p
	})
	return loadErr
}

func decodeClassification(path string) (*model.Classification, error) {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tc tomlClassification
	if err := toml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cls := &model.Classification{
		Name:         tc.Name,
		Title:        tc.Title,
		OSMTag:       tc.OSMTag,
		ParentOSMTag: tc.ParentOSMTag,
	}
	for _, d := range tc.Divisions {
		cls.Divisions = append(cls.Divisions, model.Division{
			Name:   d.Name,
			Fill:   d.Fill,
			Border: d.Border,
			Label:  d.Label,
		})
	}
	for _, g := range tc.Groups {
		cls.Groups = append(cls.Groups, model.MountainGroup{
			ID:               g.ID,
			Name:             g.Name,
			Division:         g.Division,
			HighPoint:        g.HighPoint,
			OSMRef:           g.OSMRef,
			FallbackRelation: g.FallbackRelation,
		})
	}
	return cls, nil
}

func decodeRegion(path string) (*model.Region, error) {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tr tomlRegion
	if err := toml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	region := &model.Region{
		Name: tr.Name,
		BBox: model.BBox{
			West:  tr.BBox.West,
			East:  tr.BBox.East,
			South: tr.BBox.South,
			North: tr.BBox.North,
		},
		Projection: model.Projection{
			CentralLongitude:  tr.Projection.CentralLongitude,
			CentralLatitude:   tr.Projection.CentralLatitude,
			StandardParallels: tr.Projection.StandardParallels,
		},
	}
	for _, c := range tr.Cities {
		region.Cities = append(region.Cities, model.City{
			Name: c.Name,
			Lon:  c.Lon,
			Lat:  c.Lat,
			DX:   c.DX,
			DY:   c.DY,
		})
	}
	return region, nil
}

func decodePOIs(path string) (*model.POIClassification, error) {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tp tomlPOIs
	if err := toml.Unmarshal(data, &tp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cls := &model.POIClassification{
		Name:   tp.Name,
		Title:  tp.Title,
		Styles: make(map[model.POICategory]model.CategoryStyle),
	}
	for cat, s := range tp.Categories {
		cls.Styles[model.POICategory(cat)] = model.CategoryStyle{
			Marker: model.MarkerShape(s.Marker),
			Color:  s.Color,
			Size:   s.Size,
			Label:  s.Label,
		}
	}
	for _, p := range tp.POIs {
		cls.POIs = append(cls.POIs, model.POI{
			ID:        p.ID,
			Name:      p.Name,
			Category:  model.POICategory(p.Category),
			Lat:       p.Lat,
			Lon:       p.Lon,
			Elevation: p.Elevation,
			Subtitle:  p.Subtitle,
		})
	}
	return cls, nil
}

// Regions returns all known region names in stable order.
func Regions() []string {
	return []string{"ostalpen", "westalpen"}
}

// Region returns the region with the given name.
func Region(name string) (*model.Region, error) {
	if err := load(); err != nil {
		return nil, err
	}
	r, ok := regions[name]
	if !ok {
		return nil, fmt.Errorf("unknown region %q", name)
	}
	return r, nil
}

// Classification returns the classification table for a region/system
// pair. POI decks use POIs instead.
func Classification(region, system string) (*model.Classification, error) {
	if err := load(); err != nil {
		return nil, err
	}
	if !model.IsValidCombination(region, system) {
		return nil, fmt.Errorf("region %q does not build system %q", region, system)
	}
	c, ok := classifications[region+"_"+system]
	if !ok {
		return nil, fmt.Errorf("no classification table for %s/%s", region, system)
	}
	return c, nil
}

// POIs returns the point-of-interest table.
func POIs() (*model.POIClassification, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return pois, nil
}

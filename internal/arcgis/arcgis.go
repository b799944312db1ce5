package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/httpclient"
)

// The FeatureServer stores the whole SOIUSA hierarchy at the Gruppo
// level; coarser levels are obtained by dissolving on the requested
// attribute. Layer 11 is the Gruppo polygon layer.
const (
	queryLayerID   = 11
	maxRecordCount = 2000
)

// hierarchyLevels orders the SOIUSA attribute fields coarse to fine.
var hierarchyLevels = []string{"PT", "SR", "SZ", "STS", "SPG", "GR"}

// RegionFilter maps region names to the PT attribute value used in the
// WHERE clause.
var RegionFilter = map[string]string{
	"westalpen": "Alpi Occidentali",
	"ostalpen":  "Alpi Orientali",
}

// Client downloads SOIUSA polygons from the ARPA Piemonte
// FeatureServer.
//
// Example:
//
//	client := arcgis.NewClient(settings.ArcGISURL, 3)
//	fc, err := client.FetchLevel(ctx, "SZ", arcgis.RegionFilter["ostalpen"])
type Client struct {
	http       *httpclient.Client
	baseURL    string
	retries    int
	retryPause time.Duration
}

// NewClient creates a FeatureServer client.
func NewClient(baseURL string, retries int) *Client {
	return &Client{
		http:       httpclient.NewClient(2 * time.Minute),
		baseURL:    baseURL,
		retries:    retries,
		retryPause: 5 * time.Second,
	}
}

// FetchLevel downloads all Gruppo features matching the PT filter and
// dissolves them to the requested hierarchy level ("SZ" or "STS").
//
// Each dissolved feature carries the level value under the level's own
// name plus all parent hierarchy values, so the polygon matcher can
// look up features by classification tag directly.
func (c *Client) FetchLevel(ctx context.Context, level, ptFilter string) (*geojson.FeatureCollection, error) {
	idx := -1
	for i, l := range hierarchyLevels {
		if l == level {
			idx = i
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("unknown hierarchy level %q", level)
	}

	where := "1=1"
	if ptFilter != "" {
		where = fmt.Sprintf("PT = '%s'", ptFilter)
	}

	features, err := c.fetchAll(ctx, where)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no features for WHERE %s", where)
	}

	return dissolve(features, hierarchyLevels[:idx+1]), nil
}

// fetchAll pages through the query endpoint until a short page arrives.
func (c *Client) fetchAll(ctx context.Context, where string) ([]*geojson.Feature, error) {
	var all []*geojson.Feature
	offset := 0

	for {
		page, err := c.fetchPage(ctx, where, offset)
		if err != nil {
			return nil, err
		}
		if len(page.Features) == 0 {
			break
		}
		all = append(all, page.Features...)
		if len(page.Features) < maxRecordCount {
			break
		}
		offset += len(page.Features)
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, where string, offset int) (*geojson.FeatureCollection, error) {
	params := url.Values{
		"where":             {where},
		"outFields":         {"*"},
		"outSR":             {"4326"},
		"f":                 {"geojson"},
		"resultOffset":      {strconv.Itoa(offset)},
		"resultRecordCount": {strconv.Itoa(maxRecordCount)},
	}
	queryURL := fmt.Sprintf("%s/%d/query?%s", c.baseURL, queryLayerID, params.Encode())

	var body []byte
	var err error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryPause):
			}
		}
		body, err = c.http.Get(ctx, queryURL)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch offset %d: %w", offset, err)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("decode page at offset %d: %w", offset, err)
	}
	return &fc, nil
}

// dissolve groups Gruppo features by the finest requested level and
// merges each group's polygons into one multipolygon feature.
//
// The merge collects member polygons rather than computing a boolean
// union: the Gruppo layer is a planar partition whose members repeat
// shared vertex chains exactly, so the collected set fills the same
// area and strokes recover the merged outline by edge multiplicity
// (geojson.MultiPolygon.Boundaries).
func dissolve(features []*geojson.Feature, levels []string) *geojson.FeatureCollection {
	level := levels[len(levels)-1]

	type group struct {
		multi geojson.MultiPolygon
		props map[string]string
	}
	groups := make(map[string]*group)

	for _, f := range features {
		key := f.Properties[level]
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{props: make(map[string]string)}
			for _, field := range levels {
				if v := f.Properties[field]; v != "" {
					g.props[field] = v
				}
			}
			groups[key] = g
		}
		g.multi = append(g.multi, f.Geometry.Polygons()...)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fc := geojson.NewFeatureCollection()
	for _, key := range keys {
		g := groups[key]
		if len(g.multi) == 0 {
			continue
		}
		f := geojson.NewFeature(geojson.Geometry{Type: "MultiPolygon", MultiPolygon: g.multi})
		f.Properties["name"] = key
		for k, v := range g.props {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc
}

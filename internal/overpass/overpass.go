package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/peaksoaring/alpdeck/internal/geojson"
	"github.com/peaksoaring/alpdeck/internal/httpclient"
	"github.com/peaksoaring/alpdeck/internal/model"
	"github.com/peaksoaring/alpdeck/internal/overpass/dto"
)

// Client queries the Overpass API and converts the responses into
// GeoJSON feature collections.
//
// Example:
//
//	client := overpass.NewClient(settings.OverpassURL, 300*time.Second, 3, 10*time.Second)
//	fc, missing, err := client.FetchPolygons(ctx, cls, region.BBox)
type Client struct {
	http       *httpclient.Client
	baseURL    string
	timeoutSec int
	retries    int
	retryPause time.Duration
}

// NewClient creates an Overpass client.
//
// timeout is the server-side query budget, transmitted in the query
// header; the HTTP client allows an extra minute on top of it. retries
// and retryPause follow the public instance's etiquette of a small
// fixed number of attempts with a flat pause.
func NewClient(baseURL string, timeout time.Duration, retries int, retryPause time.Duration) *Client {
	return &Client{
		http:       httpclient.NewClient(timeout + time.Minute),
		baseURL:    baseURL,
		timeoutSec: int(timeout.Seconds()),
		retries:    retries,
		retryPause: retryPause,
	}
}

// FetchPolygons downloads the classification's mountain group polygons.
//
// Tagged relations inside the region bbox come first; groups whose
// relation lacks the tag are fetched by relation ID afterwards and get
// the tag injected. The returned missing list names the OSM refs no
// polygon could be built for.
func (c *Client) FetchPolygons(ctx context.Context, cls *model.Classification, bbox model.BBox) (*geojson.FeatureCollection, []string, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n  relation[%q](%g,%g,%g,%g);\n);\nout body;\n>;\nout skel qt;\n",
		c.timeoutSec, cls.OSMTag, bbox.South, bbox.West, bbox.North, bbox.East,
	)

	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s polygons: %w", cls.Name, err)
	}

	features, _ := relationPolygons(resp, cls.OSMTag)

	// Keep only the refs the classification defines.
	valid := make(map[string]bool, len(cls.Groups))
	for _, g := range cls.Groups {
		valid[g.OSMRef] = true
	}

	fc := geojson.NewFeatureCollection()
	found := make(map[string]bool)
	for _, f := range features {
		ref := f.Properties[cls.OSMTag]
		if valid[ref] {
			fc.Append(f)
			found[ref] = true
		}
	}

	// Fallback: fetch still-missing groups by relation ID.
	refByID := make(map[int64]string)
	for _, g := range cls.Groups {
		if !found[g.OSMRef] && g.FallbackRelation != 0 {
			refByID[g.FallbackRelation] = g.OSMRef
		}
	}
	if len(refByID) > 0 {
		fallback, err := c.fetchByRelationID(ctx, refByID, cls.OSMTag)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range fallback {
			fc.Append(f)
			found[f.Properties[cls.OSMTag]] = true
		}
	}

	var missing []string
	for _, g := range cls.Groups {
		if !found[g.OSMRef] {
			missing = append(missing, g.OSMRef)
		}
	}
	return fc, missing, nil
}

func (c *Client) fetchByRelationID(ctx context.Context, refByID map[int64]string, osmTag string) ([]*geojson.Feature, error) {
	var union string
	for id := range refByID {
		union += fmt.Sprintf("  relation(%d);\n", id)
	}
	query := fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n%s);\nout body;\n>;\nout skel qt;\n",
		c.timeoutSec, union,
	)

	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback relations: %w", err)
	}
	features, _ := relationPolygonsByID(resp, refByID, osmTag)
	return features, nil
}

// FetchBorders downloads admin_level=2 boundary ways (country borders)
// inside the bbox.
func (c *Client) FetchBorders(ctx context.Context, bbox model.BBox) (*geojson.FeatureCollection, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n  way[\"boundary\"=\"administrative\"][\"admin_level\"=\"2\"](%g,%g,%g,%g);\n);\nout geom;\n",
		c.timeoutSec, bbox.South, bbox.West, bbox.North, bbox.East,
	)

	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch borders: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	fc.Features = wayLines(resp)
	return fc, nil
}

// FetchRivers downloads waterway=river ways and relations inside the
// bbox.
func (c *Client) FetchRivers(ctx context.Context, bbox model.BBox) (*geojson.FeatureCollection, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n  way[\"waterway\"=\"river\"](%g,%g,%g,%g);\n  relation[\"waterway\"=\"river\"](%g,%g,%g,%g);\n);\nout geom;\n",
		c.timeoutSec,
		bbox.South, bbox.West, bbox.North, bbox.East,
		bbox.South, bbox.West, bbox.North, bbox.East,
	)

	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch rivers: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	fc.Features = wayLines(resp)
	return fc, nil
}

// FetchLakes downloads lake and reservoir polygons inside the bbox.
func (c *Client) FetchLakes(ctx context.Context, bbox model.BBox) (*geojson.FeatureCollection, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n  way[\"natural\"=\"water\"][\"water\"~\"^(lake|reservoir)$\"](%g,%g,%g,%g);\n  relation[\"natural\"=\"water\"][\"water\"~\"^(lake|reservoir)$\"](%g,%g,%g,%g);\n);\nout geom;\n",
		c.timeoutSec,
		bbox.South, bbox.West, bbox.North, bbox.East,
		bbox.South, bbox.West, bbox.North, bbox.East,
	)

	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch lakes: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	fc.Features = waterPolygons(resp)
	return fc, nil
}

// query POSTs an Overpass query with retries.
func (c *Client) query(ctx context.Context, query string) (*dto.Response, error) {
	var body []byte
	var err error

	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryPause):
			}
		}
		body, err = c.http.PostForm(ctx, c.baseURL, url.Values{"data": {query}})
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	var resp dto.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return &resp, nil
}

package catalog

import (
	"testing"

	"github.com/peaksoaring/alpdeck/internal/model"
)

func TestRegion(t *testing.T) {
	region, err := Region("ostalpen")
	if err != nil {
		t.Fatalf("Region(ostalpen) error: %v", err)
	}

	if region.BBox.West != 9.05 || region.BBox.East != 16.82 {
		t.Errorf("ostalpen bbox = %+v", region.BBox)
	}
	if len(region.Cities) == 0 {
		t.Error("ostalpen should have context cities")
	}

	if _, err := Region("alpen"); err == nil {
		t.Error("Region(alpen) should return an error")
	}
}

func TestClassification_Tables(t *testing.T) {
	tests := []struct {
		region    string
		system    string
		groups    int
		divisions int
		osmTag    string
		parentTag string
	}{
		{"ostalpen", "ave84", 75, 4, "ref:aveo", ""},
		{"ostalpen", "soiusa_sz", 22, 3, "SZ", ""},
		{"ostalpen", "soiusa_sts", 76, 22, "STS", "SZ"},
		{"westalpen", "soiusa_sz", 14, 2, "ref:soiusa", ""},
		{"westalpen", "soiusa_sts", 55, 14, "STS", "SZ"},
	}

	for _, tt := range tests {
		t.Run(tt.region+"_"+tt.system, func(t *testing.T) {
			cls, err := Classification(tt.region, tt.system)
			if err != nil {
				t.Fatalf("Classification error: %v", err)
			}
			if len(cls.Groups) != tt.groups {
				t.Errorf("groups = %d, want %d", len(cls.Groups), tt.groups)
			}
			if len(cls.Divisions) != tt.divisions {
				t.Errorf("divisions = %d, want %d", len(cls.Divisions), tt.divisions)
			}
			if cls.OSMTag != tt.osmTag {
				t.Errorf("OSMTag = %q, want %q", cls.OSMTag, tt.osmTag)
			}
			if cls.ParentOSMTag != tt.parentTag {
				t.Errorf("ParentOSMTag = %q, want %q", cls.ParentOSMTag, tt.parentTag)
			}
		})
	}
}

func TestClassification_InvalidCombination(t *testing.T) {
	if _, err := Classification("westalpen", "ave84"); err == nil {
		t.Error("westalpen has no AVE table, expected an error")
	}
}

func TestClassification_GroupsResolve(t *testing.T) {
	cls, err := Classification("ostalpen", "ave84")
	if err != nil {
		t.Fatalf("Classification error: %v", err)
	}

	// Every group must reference a known division and carry the fields
	// the renderer and deck builder depend on.
	for _, g := range cls.Groups {
		if _, err := cls.Division(g.Division); err != nil {
			t.Errorf("group %s: %v", g.ID, err)
		}
		if g.Name == "" || g.HighPoint == "" || g.OSMRef == "" {
			t.Errorf("group %s has empty fields: %+v", g.ID, g)
		}
	}
}

func TestPOIs(t *testing.T) {
	pois, err := POIs()
	if err != nil {
		t.Fatalf("POIs error: %v", err)
	}

	if len(pois.POIs) != 40 {
		t.Errorf("len(POIs) = %d, want 40", len(pois.POIs))
	}

	for _, cat := range []model.POICategory{
		model.CategoryPeak, model.CategoryPass, model.CategoryTown, model.CategoryValley,
	} {
		style, ok := pois.Styles[cat]
		if !ok {
			t.Errorf("missing style for category %s", cat)
			continue
		}
		if style.Label == "" || style.Color == "" {
			t.Errorf("category %s style incomplete: %+v", cat, style)
		}
		if len(pois.POIsByCategory(cat)) == 0 {
			t.Errorf("no POIs in category %s", cat)
		}
	}
}

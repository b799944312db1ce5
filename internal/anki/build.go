package anki

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peaksoaring/alpdeck/internal/model"
)

// BuildOptions locates the card images and the output directory.
type BuildOptions struct {
	// ImagesDir holds the rendered basemap and overlays of the deck.
	ImagesDir string

	// DecksDir receives the finished .apkg archive.
	DecksDir string

	// Log receives progress and warning lines. Nil discards them.
	Log func(msg string)

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (o *BuildOptions) logf(format string, args ...any) {
	if o.Log != nil {
		o.Log(fmt.Sprintf(format, args...))
	}
}

// ArchivePath returns where the archive for a deck name lands.
func (o *BuildOptions) ArchivePath(deckName string) string {
	return filepath.Join(o.DecksDir, "anki_"+deckName+".apkg")
}

// BuildGroupPackage assembles the .apkg for one polygon deck and
// returns the archive path. Shared layers must exist; a group with
// missing overlays is skipped with a warning so one failed render does
// not sink the whole deck.
func BuildGroupPackage(deck *model.Deck, opts BuildOptions) (string, error) {
	title := "Gebirgsgruppen der " + regionLabel(deck.Region.Name)
	base := "peak_soaring_" + deck.Name()

	m := groupModel(StableID(base+"_model"), title)
	dk := &Deck{ID: StableID(base + "_deck"), Name: title}

	pkg := &Package{Models: []*Model{m}, Decks: []*Deck{dk}, Now: opts.Now}

	shared, err := sharedGroupLayers(deck, pkg, opts)
	if err != nil {
		return "", err
	}
	if err := addGroupNotes(deck, pkg, m, dk, base, shared, opts); err != nil {
		return "", err
	}

	out := opts.ArchivePath(deck.Name())
	if err := pkg.WriteFile(out); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(out), err)
	}
	opts.logf("%s: %d notes, %d media files -> %s", title, len(pkg.Notes), len(pkg.Media), out)
	return out, nil
}

// Subdeck names one member of a combined package.
type Subdeck struct {
	Deck  *model.Deck
	Label string
}

// BuildCombinedPackage packs several classification levels of one
// region into a single archive with nested decks ("Parent::Label").
// All subdecks share the note type and the basemap of the first
// entry; partition and context stay per-subdeck because the grouping
// differs.
func BuildCombinedPackage(mergeKey string, subs []Subdeck, opts BuildOptions) (string, error) {
	if len(subs) == 0 {
		return "", fmt.Errorf("combined package %s: no subdecks", mergeKey)
	}
	primary := subs[0].Deck
	parentTitle := "Gebirgsgruppen der " + regionLabel(primary.Region.Name)
	base := "peak_soaring_" + mergeKey

	m := groupModel(StableID(base+"_combined_model"), parentTitle)
	pkg := &Package{Models: []*Model{m}, Now: opts.Now}

	for _, sub := range subs {
		dk := &Deck{
			ID:   StableID(fmt.Sprintf("%s_%s_deck", base, sub.Label)),
			Name: parentTitle + "::" + sub.Label,
		}
		pkg.Decks = append(pkg.Decks, dk)

		shared, err := sharedGroupLayers(sub.Deck, pkg, opts)
		if err != nil {
			return "", err
		}
		// The basemap raster is identical across levels; AddMedia
		// dedupes it, the per-level partition and context stay.
		before := len(pkg.Notes)
		if err := addGroupNotes(sub.Deck, pkg, m, dk, base, shared, opts); err != nil {
			return "", err
		}
		opts.logf("  %s: %d notes", sub.Label, len(pkg.Notes)-before)
	}

	out := opts.ArchivePath(mergeKey)
	if err := pkg.WriteFile(out); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(out), err)
	}
	opts.logf("%s: %d notes in %d subdecks, %d media files -> %s",
		parentTitle, len(pkg.Notes), len(subs), len(pkg.Media), out)
	return out, nil
}

// groupLayers holds the <img> tags of the per-deck shared images.
type groupLayers struct {
	basemap   string
	partition string
	context   string
}

func sharedGroupLayers(deck *model.Deck, pkg *Package, opts BuildOptions) (groupLayers, error) {
	var l groupLayers
	for _, layer := range []struct {
		file string
		html *string
		css  string
	}{
		{deck.BasemapName(), &l.basemap, "basemap"},
		{deck.PartitionName(), &l.partition, "overlay partition"},
		{deck.ContextName(), &l.context, "overlay context"},
	} {
		path := filepath.Join(opts.ImagesDir, layer.file)
		if _, err := os.Stat(path); err != nil {
			return l, fmt.Errorf("deck %s: missing shared layer %s (run the cards step first)",
				deck.Name(), layer.file)
		}
		pkg.AddMedia(path)
		*layer.html = imgTag(layer.css, layer.file)
	}
	return l, nil
}

func addGroupNotes(deck *model.Deck, pkg *Package, m *Model, dk *Deck, guidSeed string, shared groupLayers, opts BuildOptions) error {
	skipped := 0
	for _, group := range deck.Classification.Groups {
		frontFile := deck.GroupFrontName(group.ID)
		backFile := deck.GroupBackName(group.ID)
		frontPath := filepath.Join(opts.ImagesDir, frontFile)
		backPath := filepath.Join(opts.ImagesDir, backFile)

		if !fileExists(frontPath) || !fileExists(backPath) {
			skipped++
			opts.logf("warn: missing overlay for group %s (%s)", group.ID, group.Name)
			continue
		}
		pkg.AddMedia(frontPath)
		pkg.AddMedia(backPath)

		pkg.Notes = append(pkg.Notes, &Note{
			Model: m,
			Deck:  dk,
			Fields: []string{
				group.ID,
				group.Name,
				group.HighPoint,
				shared.basemap,
				imgTag("overlay", frontFile),
				imgTag("overlay", backFile),
				shared.partition,
				shared.context,
			},
			GUIDSeed: guidSeed,
		})
	}
	if skipped > 0 {
		opts.logf("warn: %d groups skipped (missing overlays), rerun cards with force", skipped)
	}
	return nil
}

// BuildPOIPackage assembles the .apkg for a POI deck. Every note
// feeds both card templates; the category becomes a note tag so
// subsets can be suspended in Anki.
func BuildPOIPackage(deck *model.POIDeck, opts BuildOptions) (string, error) {
	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}
	label := regionLabel(deck.Region.Name) + " " + deck.Classification.Title
	title := fmt.Sprintf("%s (Beta %s)", label, now.Format("2006-01-02"))
	base := "peak_soaring_" + deck.Name()

	m := poiModel(StableID(base+"_poi_model"), label)
	dk := &Deck{ID: StableID(base + "_poi_deck"), Name: title}
	pkg := &Package{Models: []*Model{m}, Decks: []*Deck{dk}, Now: opts.Now}

	var basemap, context, allPOIs string
	for _, layer := range []struct {
		file string
		html *string
		css  string
	}{
		{deck.BasemapName(), &basemap, "basemap"},
		{deck.ContextName(), &context, "overlay context"},
		{deck.AllPOIsName(), &allPOIs, "overlay"},
	} {
		path := filepath.Join(opts.ImagesDir, layer.file)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("deck %s: missing shared layer %s (run the cards step first)",
				deck.Name(), layer.file)
		}
		pkg.AddMedia(path)
		*layer.html = imgTag(layer.css, layer.file)
	}

	skipped := 0
	for i := range deck.Classification.POIs {
		poi := &deck.Classification.POIs[i]
		highlightFile := deck.HighlightName(poi.ID)
		backFile := deck.BackName(poi.ID)
		highlightPath := filepath.Join(opts.ImagesDir, highlightFile)
		backPath := filepath.Join(opts.ImagesDir, backFile)

		if !fileExists(highlightPath) || !fileExists(backPath) {
			skipped++
			opts.logf("warn: missing overlay for poi %s (%s)", poi.ID, poi.Name)
			continue
		}
		pkg.AddMedia(highlightPath)
		pkg.AddMedia(backPath)

		catLabel := string(poi.Category)
		if style, ok := deck.Classification.Styles[poi.Category]; ok && style.Label != "" {
			catLabel = style.Label
		}

		pkg.Notes = append(pkg.Notes, &Note{
			Model: m,
			Deck:  dk,
			Fields: []string{
				poi.ID,
				poi.Name,
				catLabel,
				poi.Info(),
				basemap,
				allPOIs,
				imgTag("overlay", highlightFile),
				imgTag("overlay", backFile),
				context,
			},
			Tags:     []string{string(poi.Category)},
			GUIDSeed: base,
		})
	}
	if skipped > 0 {
		opts.logf("warn: %d pois skipped (missing overlays), rerun cards with force", skipped)
	}

	out := opts.ArchivePath(deck.Name())
	if err := pkg.WriteFile(out); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(out), err)
	}
	opts.logf("%s: %d notes x %d templates, %d media files -> %s",
		title, len(pkg.Notes), len(m.Templates), len(pkg.Media), out)
	return out, nil
}

func imgTag(class, file string) string {
	return fmt.Sprintf(`<img class="%s" src="%s">`, class, file)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func regionLabel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

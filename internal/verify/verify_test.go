package verify

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/peaksoaring/alpdeck/internal/anki"
)

func TestArchiveSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.apkg")
	if err := os.WriteFile(path, make([]byte, 2<<20), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ArchiveSize(path, 50); err != nil {
		t.Errorf("2 MB under a 50 MB limit: %v", err)
	}
	if err := ArchiveSize(path, 1); err == nil {
		t.Error("2 MB over a 1 MB limit passed")
	}
	if err := ArchiveSize(filepath.Join(t.TempDir(), "missing.apkg"), 50); err == nil {
		t.Error("missing archive passed")
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestImageDims(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "basemap.png"), 64, 48)
	writePNG(t, filepath.Join(dir, "front.png"), 64, 48)
	writePNG(t, filepath.Join(dir, "back.png"), 64, 48)
	// Non-image files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ImageDims(dir); err != nil {
		t.Errorf("uniform images: %v", err)
	}

	writePNG(t, filepath.Join(dir, "odd.png"), 32, 48)
	err := ImageDims(dir)
	if err == nil {
		t.Fatal("mismatched image passed")
	}
	if !strings.Contains(err.Error(), "odd.png") {
		t.Errorf("error does not name the odd image: %v", err)
	}
}

func TestImageDimsEmptyDir(t *testing.T) {
	if err := ImageDims(t.TempDir()); err == nil {
		t.Error("empty dir passed")
	}
}

// buildArchive writes a small package so the comparison has something
// real to chew on.
func buildArchive(t *testing.T, dir, name, fieldValue string) string {
	t.Helper()
	m := &anki.Model{
		ID:     1234,
		Name:   "Test",
		Fields: []string{"Front", "Back"},
		Templates: []anki.Template{
			{Name: "Karte", Front: "{{Front}}", Back: "{{Back}}"},
		},
		Required: [][]int{{0}},
	}
	d := &anki.Deck{ID: 5678, Name: "Testdeck"}

	mediaPath := filepath.Join(dir, "map.png")
	writePNG(t, mediaPath, 8, 8)

	pkg := &anki.Package{
		Models: []*anki.Model{m},
		Decks:  []*anki.Deck{d},
		Notes: []*anki.Note{
			{Model: m, Deck: d, Fields: []string{fieldValue, "Antwort"}},
		},
		Media: []string{mediaPath},
		Now:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	out := filepath.Join(dir, name)
	if err := pkg.WriteFile(out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCompareArchives(t *testing.T) {
	dir := t.TempDir()
	a := buildArchive(t, dir, "a.apkg", "Frage")
	b := buildArchive(t, dir, "b.apkg", "Frage")

	if err := CompareArchives(a, b); err != nil {
		t.Errorf("identical builds differ: %v", err)
	}

	c := buildArchive(t, dir, "c.apkg", "Andere Frage")
	if err := CompareArchives(a, c); err == nil {
		t.Error("archives with different note content compared equal")
	}
}

func TestCompareArchivesTimestampIndependent(t *testing.T) {
	dir := t.TempDir()
	a := buildArchive(t, dir, "a.apkg", "Frage")

	// Second build a different moment must still compare equal.
	m := &anki.Model{
		ID:     1234,
		Name:   "Test",
		Fields: []string{"Front", "Back"},
		Templates: []anki.Template{
			{Name: "Karte", Front: "{{Front}}", Back: "{{Back}}"},
		},
		Required: [][]int{{0}},
	}
	d := &anki.Deck{ID: 5678, Name: "Testdeck"}
	mediaPath := filepath.Join(dir, "map.png")
	pkg := &anki.Package{
		Models: []*anki.Model{m},
		Decks:  []*anki.Deck{d},
		Notes: []*anki.Note{
			{Model: m, Deck: d, Fields: []string{"Frage", "Antwort"}},
		},
		Media: []string{mediaPath},
		Now:   func() time.Time { return time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC) },
	}
	b := filepath.Join(dir, "later.apkg")
	if err := pkg.WriteFile(b); err != nil {
		t.Fatal(err)
	}

	if err := CompareArchives(a, b); err != nil {
		t.Errorf("builds at different times differ: %v", err)
	}
}

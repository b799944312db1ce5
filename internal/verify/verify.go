// Package verify implements the acceptance checks a finished deck
// must pass before it ships: the archive size ceiling, uniform image
// dimensions across a deck's media, and byte-independent equality of
// two builds from the same inputs.
package verify

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Report collects the outcomes of named checks.
type Report struct {
	Problems []string
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Check records a failed check. A nil error passes silently.
func (r *Report) Check(name string, err error) {
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("%s: %v", name, err))
	}
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	return len(r.Problems) > 0
}

// ArchiveSize fails when the archive exceeds the size limit. Anki
// imports degrade badly above a certain package size, so the limit is
// a hard ceiling, not a warning.
func ArchiveSize(path string, limitMB int) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	limit := int64(limitMB) << 20
	if info.Size() >= limit {
		return fmt.Errorf("%s is %.1f MB, limit %d MB",
			filepath.Base(path), float64(info.Size())/(1<<20), limitMB)
	}
	return nil
}

// ImageDims checks that every card image in dir shares one pixel
// size. The CSS stacks overlays over the basemap at 100% width, so a
// single deviating raster misaligns silently in Anki.
func ImageDims(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type dims struct{ w, h int }
	var ref dims
	var refName string
	var mismatches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		d := dims{cfg.Width, cfg.Height}
		if refName == "" {
			ref, refName = d, e.Name()
			continue
		}
		if d != ref {
			mismatches = append(mismatches,
				fmt.Sprintf("%s is %dx%d, %s is %dx%d", e.Name(), d.w, d.h, refName, ref.w, ref.h))
		}
	}
	if refName == "" {
		return fmt.Errorf("no images in %s", dir)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d mismatched images: %s", len(mismatches), strings.Join(mismatches, "; "))
	}
	return nil
}

// CompareArchives checks that two .apkg files carry identical note
// content and identical media names. Timestamps inside the collection
// differ between builds, so the comparison reads the stable columns
// only.
func CompareArchives(a, b string) error {
	contentA, err := readArchive(a)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(a), err)
	}
	contentB, err := readArchive(b)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(b), err)
	}

	if len(contentA.notes) != len(contentB.notes) {
		return fmt.Errorf("note counts differ: %d vs %d", len(contentA.notes), len(contentB.notes))
	}
	for i := range contentA.notes {
		if contentA.notes[i] != contentB.notes[i] {
			return fmt.Errorf("note %d differs:\n  %s\n  %s", i, contentA.notes[i], contentB.notes[i])
		}
	}
	if contentA.cards != contentB.cards {
		return fmt.Errorf("card counts differ: %d vs %d", contentA.cards, contentB.cards)
	}

	if len(contentA.media) != len(contentB.media) {
		return fmt.Errorf("media counts differ: %d vs %d", len(contentA.media), len(contentB.media))
	}
	for i := range contentA.media {
		if contentA.media[i] != contentB.media[i] {
			return fmt.Errorf("media differs: %s vs %s", contentA.media[i], contentB.media[i])
		}
	}
	return nil
}

type archiveContent struct {
	notes []string
	cards int
	media []string
}

func readArchive(path string) (*archiveContent, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	content := &archiveContent{}
	foundCollection := false
	tmp, err := os.MkdirTemp("", "apkg-verify")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	for _, f := range zr.File {
		switch f.Name {
		case "media":
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, err
			}
			manifest := make(map[string]string)
			if err := json.Unmarshal(data, &manifest); err != nil {
				return nil, fmt.Errorf("media manifest: %w", err)
			}
			for _, name := range manifest {
				content.media = append(content.media, name)
			}
			sort.Strings(content.media)
		case "collection.anki2":
			colPath := filepath.Join(tmp, "collection.anki2")
			if err := extractFile(f, colPath); err != nil {
				return nil, err
			}
			if err := readCollection(colPath, content); err != nil {
				return nil, err
			}
			foundCollection = true
		}
	}
	if !foundCollection {
		return nil, fmt.Errorf("no collection in archive")
	}
	return content, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

func readCollection(path string, content *archiveContent) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query("SELECT guid, mid, tags, flds, csum FROM notes ORDER BY guid")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var guid, tags, flds string
		var mid, csum int64
		if err := rows.Scan(&guid, &mid, &tags, &flds, &csum); err != nil {
			return err
		}
		content.notes = append(content.notes,
			fmt.Sprintf("%s|%d|%s|%s|%d", guid, mid, tags, flds, csum))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return db.QueryRow("SELECT count(*) FROM cards").Scan(&content.cards)
}

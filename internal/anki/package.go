package anki

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Package is one complete .apkg archive: note types, target decks,
// notes and the media files the notes reference.
type Package struct {
	Models []*Model
	Decks  []*Deck
	Notes  []*Note

	// Media lists image paths on disk. Inside the archive each file
	// is stored under a number; the basename is what note fields must
	// reference.
	Media []string

	// Now overrides the clock in tests.
	Now func() time.Time
}

// AddMedia appends a media file unless the same path is already
// listed. Shared layers appear once no matter how many decks use
// them.
func (p *Package) AddMedia(path string) {
	for _, m := range p.Media {
		if m == path {
			return
		}
	}
	p.Media = append(p.Media, path)
}

// WriteFile builds the archive at path: a collection.anki2 database,
// the numbered media files and the "media" manifest mapping numbers to
// filenames.
func (p *Package) WriteFile(path string) error {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	tmp, err := os.MkdirTemp("", "apkg")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	colPath := filepath.Join(tmp, "collection.anki2")
	if err := writeCollection(colPath, p, now); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if err := addZipFile(zw, "collection.anki2", colPath); err != nil {
		return err
	}

	manifest := make(map[string]string, len(p.Media))
	for i, mediaPath := range p.Media {
		name := strconv.Itoa(i)
		manifest[name] = filepath.Base(mediaPath)
		if err := addZipFile(zw, name, mediaPath); err != nil {
			return err
		}
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal media manifest: %w", err)
	}
	w, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("add media manifest: %w", err)
	}
	if _, err := w.Write(manifestJSON); err != nil {
		return fmt.Errorf("write media manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func addZipFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

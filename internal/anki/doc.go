// Package anki writes ready-to-import .apkg archives.
//
// An archive is a zip holding a collection.anki2 SQLite database
// (schema version 11), the media files under numeric names and a JSON
// manifest mapping those numbers back to filenames. The packages built
// here carry deterministic model, deck and note identifiers derived
// from the deck name, so re-importing a rebuilt archive updates the
// existing notes instead of duplicating them.
//
// Three entry points cover the deck shapes:
//
//	BuildGroupPackage    one classification, one deck
//	BuildCombinedPackage several levels as nested subdecks
//	BuildPOIPackage      points of interest, two card templates
//
// Example:
//
//	opts := anki.BuildOptions{ImagesDir: imgDir, DecksDir: outDir}
//	path, err := anki.BuildGroupPackage(deck, opts)
package anki

package anki

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// writeCollection creates a collection.anki2 database at path and
// fills it from the package contents. The schema is the classic
// version 11 layout every Anki client can import.
func writeCollection(path string, p *Package, now time.Time) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertCol(tx, p, now); err != nil {
		return err
	}
	if err := insertNotes(tx, p, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertCol(tx *sql.Tx, p *Package, now time.Time) error {
	if len(p.Models) == 0 || len(p.Decks) == 0 {
		return fmt.Errorf("package needs at least one model and one deck")
	}

	mod := now.UnixMilli()
	defaultDid := p.Decks[0].ID

	models := make(map[string]modelJSON, len(p.Models))
	for _, m := range p.Models {
		models[strconv.FormatInt(m.ID, 10)] = m.toJSON(defaultDid, now.Unix())
	}
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return fmt.Errorf("marshal models: %w", err)
	}

	// The stock "Default" deck must exist even though no card of ours
	// lives in it.
	decks := map[string]deckJSON{
		"1": {ID: 1, Name: "Default", Conf: 1},
	}
	for _, d := range p.Decks {
		decks[strconv.FormatInt(d.ID, 10)] = d.toJSON(now.Unix())
	}
	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return fmt.Errorf("marshal decks: %w", err)
	}

	conf, err := colConf(p.Models[0].ID)
	if err != nil {
		return fmt.Errorf("marshal conf: %w", err)
	}

	// crt is the collection creation moment, rounded to local
	// midnight the way the clients do.
	crt := time.Date(now.Year(), now.Month(), now.Day(), 4, 0, 0, 0, now.Location()).Unix()

	_, err = tx.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		crt, mod, mod, conf, string(modelsJSON), string(decksJSON), defaultDconf,
	)
	if err != nil {
		return fmt.Errorf("insert col: %w", err)
	}
	return nil
}

func insertNotes(tx *sql.Tx, p *Package, now time.Time) error {
	noteStmt, err := tx.Prepare(
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`,
	)
	if err != nil {
		return fmt.Errorf("prepare notes: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.Prepare(
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl,
		                    factor, reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, ?, ?, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
	)
	if err != nil {
		return fmt.Errorf("prepare cards: %w", err)
	}
	defer cardStmt.Close()

	mod := now.Unix()
	for _, n := range p.Notes {
		if len(n.Fields) == 0 {
			return fmt.Errorf("note without fields for model %q", n.Model.Name)
		}
		if len(n.Fields) != len(n.Model.Fields) {
			return fmt.Errorf("note %q: %d fields, model %q wants %d",
				n.Fields[0], len(n.Fields), n.Model.Name, len(n.Model.Fields))
		}

		seed := n.GUIDSeed
		if seed == "" {
			seed = n.Fields[0]
		}
		guid := noteGUID(seed, n.Fields[0])

		// Deterministic note IDs keep rebuilt packages re-importable
		// as updates.
		noteID := StableID("note_" + guid)
		flds := joinFields(n.Fields)
		tags := ""
		if len(n.Tags) > 0 {
			tags = " " + joinTags(n.Tags) + " "
		}

		_, err := noteStmt.Exec(noteID, guid, n.Model.ID, mod, tags, flds,
			stripHTML(n.Fields[0]), fieldChecksum(n.Fields[0]))
		if err != nil {
			return fmt.Errorf("insert note %q: %w", n.Fields[0], err)
		}

		for ord := range n.Model.Templates {
			cardID := noteID*10 + int64(ord)
			if _, err := cardStmt.Exec(cardID, noteID, n.Deck.ID, ord, mod); err != nil {
				return fmt.Errorf("insert card %q/%d: %w", n.Fields[0], ord, err)
			}
		}
	}
	return nil
}

// joinFields packs field values into the flds column, separated by the
// unit separator byte.
func joinFields(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "\x1f" + f
	}
	return out
}

func joinTags(tags []string) string {
	out := tags[0]
	for _, t := range tags[1:] {
		out += " " + t
	}
	return out
}

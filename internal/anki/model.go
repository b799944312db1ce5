package anki

import "encoding/json"

// Template is one card template of a note type.
type Template struct {
	Name  string
	Front string
	Back  string
}

// Model is an Anki note type: ordered fields, one or more card
// templates and shared CSS.
type Model struct {
	ID        int64
	Name      string
	Fields    []string
	Templates []Template
	CSS       string

	// Required lists, per template, the field indices the front side
	// depends on. The importer uses it to decide which cards to
	// generate.
	Required [][]int
}

// Deck is a target deck. Nested decks use "Parent::Child" names.
type Deck struct {
	ID   int64
	Name string
}

// Note is one fact: field values in Model order plus optional tags.
type Note struct {
	Model  *Model
	Deck   *Deck
	Fields []string
	Tags   []string

	// GUIDSeed makes the note's identity stable across rebuilds.
	// Defaults to the first field.
	GUIDSeed string
}

type fieldJSON struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
	Media  []any  `json:"media"`
}

type templateJSON struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
	Did   *int64 `json:"did"`
}

type modelJSON struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      int            `json:"type"`
	Mod       int64          `json:"mod"`
	Usn       int            `json:"usn"`
	SortField int            `json:"sortf"`
	Did       int64          `json:"did"`
	Templates []templateJSON `json:"tmpls"`
	Fields    []fieldJSON    `json:"flds"`
	CSS       string         `json:"css"`
	LatexPre  string         `json:"latexPre"`
	LatexPost string         `json:"latexPost"`
	Req       [][]any        `json:"req"`
	Tags      []any          `json:"tags"`
	Vers      []any          `json:"vers"`
}

const defaultLatexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
	"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n" +
	"\\setlength{\\parindent}{0in}\n\\begin{document}\n"

// toJSON serializes the model into the collection's models column
// format. did is the default deck the model creates cards in.
func (m *Model) toJSON(did, mod int64) modelJSON {
	out := modelJSON{
		ID:        m.ID,
		Name:      m.Name,
		Mod:       mod,
		Did:       did,
		CSS:       m.CSS,
		LatexPre:  defaultLatexPre,
		LatexPost: "\\end{document}",
		Tags:      []any{},
		Vers:      []any{},
	}
	for i, name := range m.Fields {
		out.Fields = append(out.Fields, fieldJSON{
			Name:  name,
			Ord:   i,
			Font:  "Liberation Sans",
			Size:  20,
			Media: []any{},
		})
	}
	for i, t := range m.Templates {
		out.Templates = append(out.Templates, templateJSON{
			Name: t.Name,
			Ord:  i,
			Qfmt: t.Front,
			Afmt: t.Back,
		})
	}
	for i, fields := range m.Required {
		req := []any{i, "any"}
		idx := make([]any, len(fields))
		for j, f := range fields {
			idx[j] = f
		}
		out.Req = append(out.Req, append(req, idx))
	}
	return out
}

type deckJSON struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Desc             string  `json:"desc"`
	Mod              int64   `json:"mod"`
	Usn              int     `json:"usn"`
	Conf             int     `json:"conf"`
	Dyn              int     `json:"dyn"`
	Collapsed        bool    `json:"collapsed"`
	BrowserCollapsed bool    `json:"browserCollapsed"`
	ExtendNew        int     `json:"extendNew"`
	ExtendRev        int     `json:"extendRev"`
	NewToday         [2]int  `json:"newToday"`
	RevToday         [2]int  `json:"revToday"`
	LrnToday         [2]int  `json:"lrnToday"`
	TimeToday        [2]int  `json:"timeToday"`
}

func (d *Deck) toJSON(mod int64) deckJSON {
	return deckJSON{
		ID:   d.ID,
		Name: d.Name,
		Mod:  mod,
		Conf: 1,
	}
}

// colConf is the default collection configuration.
func colConf(curModel int64) (string, error) {
	conf := map[string]any{
		"activeDecks":   []int{1},
		"addToCur":      true,
		"collapseTime":  1200,
		"curDeck":       1,
		"curModel":      curModel,
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}
	b, err := json.Marshal(conf)
	return string(b), err
}

// defaultDconf is the study options group every deck references.
const defaultDconf = `{"1": {"id": 1, "name": "Default", "autoplay": true, "dyn": false, ` +
	`"lapse": {"delays": [10], "leechAction": 0, "leechFails": 8, "minInt": 1, "mult": 0}, ` +
	`"maxTaken": 60, "mod": 0, ` +
	`"new": {"bury": true, "delays": [1, 10], "initialFactor": 2500, "ints": [1, 4, 7], "order": 1, "perDay": 20, "separate": true}, ` +
	`"replayq": true, ` +
	`"rev": {"bury": true, "ease4": 1.3, "fuzz": 0.05, "ivlFct": 1, "maxIvl": 36500, "minSpace": 1, "perDay": 100}, ` +
	`"timer": 0, "usn": 0}}`

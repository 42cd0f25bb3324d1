package anki

import (
	"strconv"
	"time"
)

// JSON blob builders for the col row. Anki keys the models and decks maps by
// the id rendered as a string.

func (e *Exporter) models(now time.Time) map[string]any {
	return map[string]any{
		strconv.FormatInt(qaModelID, 10): e.model(now, qaModelID, "Cardbox - Basic", 0,
			[]string{"Question", "Answer"},
			`<div class="question">{{Question}}</div>`,
			`{{FrontSide}}<hr id="answer"><div class="answer">{{Answer}}</div>`,
		),
		strconv.FormatInt(clozeModelID, 10): e.model(now, clozeModelID, "Cardbox - Cloze", 1,
			[]string{"Text"},
			`{{cloze:Text}}`,
			`{{cloze:Text}}`,
		),
		strconv.FormatInt(choiceModelID, 10): e.model(now, choiceModelID, "Cardbox - Multiple Choice", 0,
			[]string{"Question", "Options", "Answer"},
			`<div class="question">{{Question}}</div><div class="options">{{Options}}</div>`,
			`{{FrontSide}}<hr id="answer"><div class="answer">{{Answer}}</div>`,
		),
	}
}

func (e *Exporter) model(now time.Time, id int64, name string, typ int, fieldNames []string, qfmt, afmt string) map[string]any {
	fields := make([]map[string]any, len(fieldNames))
	for i, fn := range fieldNames {
		fields[i] = map[string]any{
			"name":   fn,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []any{},
		}
	}
	templateName := "Card 1"
	if typ == 1 {
		templateName = "Cloze"
	}
	return map[string]any{
		"id":        id,
		"name":      name,
		"type":      typ,
		"did":       e.deckID,
		"mod":       now.Unix(),
		"usn":       -1,
		"sortf":     0,
		"css":       cardCSS,
		"latexPre":  latexPre,
		"latexPost": latexPost,
		"flds":      fields,
		"tmpls": []map[string]any{{
			"name":  templateName,
			"ord":   0,
			"qfmt":  qfmt,
			"afmt":  afmt,
			"bqfmt": "",
			"bafmt": "",
			"did":   nil,
		}},
		"req":  []any{[]any{0, "all", []any{0}}},
		"tags": []any{},
		"vers": []any{},
	}
}

func (e *Exporter) decks(now time.Time) map[string]any {
	return map[string]any{
		"1":                              deck(1, "Default", now),
		strconv.FormatInt(e.deckID, 10): deck(e.deckID, e.deckName, now),
	}
}

func deck(id int64, name string, now time.Time) map[string]any {
	return map[string]any{
		"id":               id,
		"name":             name,
		"mod":              now.Unix(),
		"usn":              -1,
		"desc":             "",
		"dyn":              0,
		"conf":             1,
		"collapsed":        false,
		"browserCollapsed": false,
		"extendNew":        0,
		"extendRev":        0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
	}
}

func colConf() map[string]any {
	return map[string]any{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int{1},
		"sortType":      "noteFld",
		"timeLim":       0,
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newBury":       true,
		"newSpread":     0,
		"dueCounts":     true,
		"curModel":      strconv.FormatInt(qaModelID, 10),
		"collapseTime":  1200,
	}
}

func deckConf(now time.Time) map[string]any {
	return map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"mod":      now.Unix(),
			"usn":      -1,
			"autoplay": true,
			"dyn":      false,
			"maxTaken": 60,
			"replayq":  true,
			"timer":    0,
			"new": map[string]any{
				"bury":          true,
				"delays":        []int{1, 10},
				"initialFactor": 2500,
				"ints":          []int{1, 4, 7},
				"order":         1,
				"perDay":        20,
				"separate":      true,
			},
			"rev": map[string]any{
				"bury":     true,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"minSpace": 1,
				"perDay":   100,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"leechAction": 0,
				"leechFails":  8,
				"minInt":      1,
				"mult":        0,
			},
		},
	}
}

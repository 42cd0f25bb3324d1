// Package anki exports cards to an Anki .apkg package.
//
// An .apkg is a zip archive holding a SQLite database (collection.anki2) and
// a media manifest. The exporter writes a fresh collection with three note
// models, one per card kind, and every exported card as a new note.
package anki

import (
	"archive/zip"
	"crypto/sha1"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

// Note model ids. Fixed so that repeated exports update notes in place when
// imported into the same Anki profile.
const (
	qaModelID     = 1607392319
	clozeModelID  = 1607392320
	choiceModelID = 1607392321
)

// clozeRef rewrites the collection's {{...}} cloze markers into Anki's
// {{c1::...}} syntax.
var clozeRef = regexp.MustCompile(`\{\{(.+?)\}\}`)

// Exporter writes card lists to .apkg files under a single deck name.
type Exporter struct {
	deckName string
	deckID   int64
}

// NewExporter creates an exporter. The deck id is derived from the name, so
// exports of the same deck name collide on purpose.
func NewExporter(deckName string) *Exporter {
	return &Exporter{deckName: deckName, deckID: deckIDFor(deckName)}
}

// Export writes the cards to an .apkg at outPath. When tags is non-empty,
// only cards carrying at least one of the tags are exported (the same OR
// semantics the session selector uses). Returns the number of cards written;
// zero cards produce no file.
func (e *Exporter) Export(cards []domain.Card, outPath string, tags []string) (int, error) {
	if len(tags) > 0 {
		var filtered []domain.Card
		for _, c := range cards {
			if c.HasAnyTag(tags) {
				filtered = append(filtered, c)
			}
		}
		cards = filtered
	}
	if len(cards) == 0 {
		return 0, nil
	}

	workDir, err := os.MkdirTemp("", "cardbox-apkg-")
	if err != nil {
		return 0, fmt.Errorf("failed to create export scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	dbPath := filepath.Join(workDir, "collection.anki2")
	if err := e.writeCollection(dbPath, cards); err != nil {
		return 0, err
	}
	if err := writePackage(outPath, dbPath); err != nil {
		return 0, err
	}
	return len(cards), nil
}

func (e *Exporter) writeCollection(dbPath string, cards []domain.Card) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open collection database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply collection schema: %w", err)
	}

	now := time.Now()
	if err := e.insertCol(db, now); err != nil {
		return err
	}

	noteBase := now.UnixMilli()
	for i, card := range cards {
		noteID := noteBase + int64(i)
		fields := noteFields(card)
		first := fields[0]
		joined := strings.Join(fields, "\x1f")

		_, err := db.Exec(`
			INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			noteID,
			card.ID.String(),
			modelFor(card.Kind),
			now.Unix(),
			-1,
			tagString(card.Tags),
			joined,
			first,
			fieldChecksum(first),
			0,
			"",
		)
		if err != nil {
			return fmt.Errorf("failed to insert note for card %s: %w", card.ID, err)
		}

		_, err = db.Exec(`
			INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due,
			                   ivl, factor, reps, lapses, left, odue, odid, flags, data)
			VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')
		`,
			noteID+int64(len(cards)), // card ids must not collide with note ids
			noteID,
			e.deckID,
			now.Unix(),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert card row for %s: %w", card.ID, err)
		}
	}
	return nil
}

func (e *Exporter) insertCol(db *sql.DB, now time.Time) error {
	models, err := json.Marshal(e.models(now))
	if err != nil {
		return fmt.Errorf("failed to encode note models: %w", err)
	}
	decks, err := json.Marshal(e.decks(now))
	if err != nil {
		return fmt.Errorf("failed to encode decks: %w", err)
	}
	conf, err := json.Marshal(colConf())
	if err != nil {
		return fmt.Errorf("failed to encode collection config: %w", err)
	}
	dconf, err := json.Marshal(deckConf(now))
	if err != nil {
		return fmt.Errorf("failed to encode deck config: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')
	`,
		startOfDay(now).Unix(),
		now.UnixMilli(),
		now.UnixMilli(),
		string(conf),
		string(models),
		string(decks),
		string(dconf),
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection row: %w", err)
	}
	return nil
}

// noteFields renders a card into its model's field list.
func noteFields(card domain.Card) []string {
	switch card.Kind {
	case domain.KindCloze:
		return []string{clozeRef.ReplaceAllString(card.Question, "{{c1::$1}}")}
	case domain.KindMultipleChoice:
		var opts []string
		for i, opt := range card.Options {
			opts = append(opts, fmt.Sprintf("%d. %s", i+1, opt))
		}
		return []string{card.Question, strings.Join(opts, "<br>"), card.Answer}
	default:
		return []string{card.Question, card.Answer}
	}
}

func modelFor(kind domain.Kind) int64 {
	switch kind {
	case domain.KindCloze:
		return clozeModelID
	case domain.KindMultipleChoice:
		return choiceModelID
	default:
		return qaModelID
	}
}

// tagString joins tags in Anki's space-delimited, space-padded format.
func tagString(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}

// fieldChecksum is the integer value of the first 8 hex digits of the SHA-1
// of the note's first field, as Anki computes it.
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}

// deckIDFor derives a stable deck id in Anki's expected [2^30, 2^31) range
// from the deck name.
func deckIDFor(name string) int64 {
	sum := sha256.Sum256([]byte(name))
	return int64(binary.BigEndian.Uint32(sum[:4]))%(1<<30) + 1<<30
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// writePackage zips the collection database and an empty media manifest
// into the .apkg at outPath.
func writePackage(outPath, dbPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create package %s: %w", outPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	dbEntry, err := zw.Create("collection.anki2")
	if err != nil {
		return fmt.Errorf("failed to add collection to package: %w", err)
	}
	db, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to reopen collection database: %w", err)
	}
	if _, err := io.Copy(dbEntry, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to copy collection into package: %w", err)
	}
	db.Close()

	mediaEntry, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("failed to add media manifest: %w", err)
	}
	if _, err := mediaEntry.Write([]byte("{}")); err != nil {
		return fmt.Errorf("failed to write media manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}
	return out.Close()
}

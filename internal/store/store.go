// Package store persists the card collection as a JSON document on disk.
//
// Saves are crash-safe: the previous primary file is copied to a sibling
// backup, the new content is written to a temporary file, and the temporary
// file is renamed over the primary. A reader therefore never observes a
// partially written primary, and a corrupted primary can be recovered from
// the backup on the next load.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

// ErrNotFound is returned when an operation references an unknown card id.
// Check with errors.Is.
var ErrNotFound = errors.New("store: card not found")

const (
	backupSuffix = ".bak"
	tempSuffix   = ".tmp"
)

// Store reads and writes a card collection at a fixed file path. It assumes
// single-process access; concurrent writers to the same path may race.
type Store struct {
	path     string
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a store for the collection file at path. A nil logger falls
// back to slog.Default.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:     path,
		validate: validator.New(),
		logger:   logger,
	}
}

// Path returns the primary collection file path.
func (s *Store) Path() string { return s.path }

func (s *Store) backupPath() string { return s.path + backupSuffix }

// Load reads the collection from disk. A missing primary file is not an
// error: it yields an empty collection. A primary that fails to read, parse
// or validate is retried from the backup; if that also fails, the returned
// error wraps the original cause.
func (s *Store) Load() (*domain.Collection, error) {
	data, loadErr := os.ReadFile(s.path)
	if errors.Is(loadErr, os.ErrNotExist) {
		return domain.NewCollection(), nil
	}

	if loadErr == nil {
		var col *domain.Collection
		if col, loadErr = s.decode(data); loadErr == nil {
			return col, nil
		}
	}

	if backup, err := os.ReadFile(s.backupPath()); err == nil {
		if col, err := s.decode(backup); err == nil {
			s.logger.Warn("primary collection unreadable, recovered from backup",
				"path", s.path, "error", loadErr)
			return col, nil
		}
	}
	return nil, fmt.Errorf("failed to load collection %s: %w", s.path, loadErr)
}

func (s *Store) decode(data []byte) (*domain.Collection, error) {
	var col domain.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(&col); err != nil {
		return nil, err
	}
	return &col, nil
}

// Save writes the collection atomically. The current primary, if any, is
// first copied to the backup; a failed backup copy is logged and does not
// block the write. Write and rename failures propagate, leaving the last
// durable primary intact.
func (s *Store) Save(col *domain.Collection) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.backupPath()); err != nil {
			s.logger.Warn("failed to refresh backup, continuing with save",
				"path", s.backupPath(), "error", err)
		}
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	tmp := s.path + tempSuffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// GetCard returns the card with the given id from a fresh load.
func (s *Store) GetCard(id uuid.UUID) (domain.Card, error) {
	col, err := s.Load()
	if err != nil {
		return domain.Card{}, err
	}
	for _, c := range col.Cards {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Card{}, fmt.Errorf("get card %s: %w", id, ErrNotFound)
}

// AddCard appends the card to a freshly loaded collection and saves it.
func (s *Store) AddCard(card domain.Card) error {
	col, err := s.Load()
	if err != nil {
		return err
	}
	col.Cards = append(col.Cards, card)
	return s.Save(col)
}

// UpdateCard replaces the stored card with the same id. The collection is
// reloaded first, so the update applies to current on-disk state rather
// than anything the caller cached.
func (s *Store) UpdateCard(card domain.Card) error {
	col, err := s.Load()
	if err != nil {
		return err
	}
	for i := range col.Cards {
		if col.Cards[i].ID == card.ID {
			col.Cards[i] = card
			return s.Save(col)
		}
	}
	return fmt.Errorf("update card %s: %w", card.ID, ErrNotFound)
}

// DeleteCard removes the card with the given id. Deleting an unknown id
// returns ErrNotFound; callers may treat that as a no-op.
func (s *Store) DeleteCard(id uuid.UUID) error {
	col, err := s.Load()
	if err != nil {
		return err
	}
	kept := col.Cards[:0]
	for _, c := range col.Cards {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(col.Cards) {
		return fmt.Errorf("delete card %s: %w", id, ErrNotFound)
	}
	col.Cards = kept
	return s.Save(col)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

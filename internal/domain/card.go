package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Version is the collection format version written by this build.
const Version = "1.0"

// DefaultEaseFactor is the ease assigned to a card that has never been
// reviewed. It is also the neutral baseline reported for an empty collection.
const DefaultEaseFactor = 2.5

// Kind discriminates the card variants.
type Kind string

const (
	KindQA             Kind = "qa"
	KindCloze          Kind = "cloze"
	KindMultipleChoice Kind = "multiple_choice"
)

// Review records a single review event for a card.
type Review struct {
	Date         time.Time `json:"date"`
	Score        float64   `json:"score"`
	IntervalDays float64   `json:"interval_days"`
}

// Card is one unit of study material together with its scheduling state.
// Options is only meaningful for multiple_choice cards. LastReviewed is nil
// until the first review; NextReview is always set and defaults to the
// creation time, so new cards are immediately reviewable.
type Card struct {
	ID           uuid.UUID  `json:"id" validate:"required"`
	Kind         Kind       `json:"type" validate:"required,oneof=qa cloze multiple_choice"`
	Question     string     `json:"question" validate:"required"`
	Answer       string     `json:"answer" validate:"required"`
	Tags         []string   `json:"tags"`
	Options      []string   `json:"options,omitempty"`
	CreatedAt    time.Time  `json:"created_at" validate:"required"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextReview   time.Time  `json:"next_review" validate:"required"`
	EaseFactor   float64    `json:"ease_factor" validate:"gte=1.3,lte=3"`
	IntervalDays float64    `json:"interval_days" validate:"gte=0"`
	ReviewCount  int        `json:"review_count" validate:"gte=0"`
	History      []Review   `json:"review_history"`
}

// NewCard creates a card with default scheduling state, due immediately.
// Tags are normalized: trimmed, empties dropped, duplicates collapsed.
func NewCard(kind Kind, question, answer string, tags []string, now time.Time) Card {
	return Card{
		ID:         uuid.New(),
		Kind:       kind,
		Question:   question,
		Answer:     answer,
		Tags:       NormalizeTags(tags),
		CreatedAt:  now,
		NextReview: now,
		EaseFactor: DefaultEaseFactor,
	}
}

// Clone returns a deep copy of the card. Slice fields and the LastReviewed
// pointer are not shared with the original.
func (c Card) Clone() Card {
	out := c
	if c.LastReviewed != nil {
		t := *c.LastReviewed
		out.LastReviewed = &t
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Options != nil {
		out.Options = append([]string(nil), c.Options...)
	}
	if c.History != nil {
		out.History = append([]Review(nil), c.History...)
	}
	return out
}

// IsDue reports whether the card's next review time has been reached.
func (c Card) IsDue(now time.Time) bool {
	return !c.NextReview.After(now)
}

// HasAnyTag reports whether the card carries at least one of the given tags.
func (c Card) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range c.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// NormalizeTags trims whitespace, drops empty entries, and collapses
// duplicates while preserving first-seen order.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Collection is the unit of persistence: every card plus a format version.
// Card order is preserved across load/save round trips but carries no
// meaning beyond that.
type Collection struct {
	Version string `json:"version" validate:"required"`
	Cards   []Card `json:"cards" validate:"dive"`
}

// NewCollection returns an empty collection tagged with the current version.
func NewCollection() *Collection {
	return &Collection{Version: Version, Cards: []Card{}}
}

// Package session drives one ordered review pass over selected cards.
//
// Each scored card is rescheduled and persisted before the cursor advances,
// so aborting a session mid-way never loses already-recorded progress. There
// is deliberately no multi-card transaction.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
	"github.com/mfitzmaurice/cardbox/internal/scheduler"
	"github.com/mfitzmaurice/cardbox/internal/store"
)

// Sentinel errors for session scoring. Check with errors.Is.
var (
	ErrScoreRange = errors.New("session: score outside [0, 1]")
	ErrFinished   = errors.New("session: no cards remaining")
)

// Summary describes a finished or aborted session.
type Summary struct {
	Reviewed  int
	MeanScore float64
}

// Session holds the ordered card list and a cursor over it.
type Session struct {
	store  *store.Store
	cards  []domain.Card
	index  int
	scores []float64
	now    func() time.Time
}

// New starts a session over cards, persisting reviews through st.
func New(st *store.Store, cards []domain.Card) *Session {
	return &Session{store: st, cards: cards, now: time.Now}
}

// Current returns the card under the cursor. ok is false once every card
// has been scored.
func (s *Session) Current() (domain.Card, bool) {
	if s.index >= len(s.cards) {
		return domain.Card{}, false
	}
	return s.cards[s.index], true
}

// Position returns the 1-based cursor position and the session length,
// for progress display.
func (s *Session) Position() (current, total int) {
	return s.index + 1, len(s.cards)
}

// Done reports whether every card has been scored.
func (s *Session) Done() bool {
	return s.index >= len(s.cards)
}

// Submit scores the current card, writes the rescheduled card back through
// the store, records the score, and advances the cursor. The store write
// happens against a freshly loaded collection, keyed by card id.
func (s *Session) Submit(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("%w: %v", ErrScoreRange, score)
	}
	card, ok := s.Current()
	if !ok {
		return ErrFinished
	}

	updated := scheduler.ApplyReview(card, score, s.now())
	if err := s.store.UpdateCard(updated); err != nil {
		return fmt.Errorf("failed to persist review for card %s: %w", card.ID, err)
	}

	s.scores = append(s.scores, score)
	s.index++
	return nil
}

// Summary reports how many cards were scored and the mean score, zero when
// nothing was scored. Valid at any point, including after an abort.
func (s *Session) Summary() Summary {
	out := Summary{Reviewed: len(s.scores)}
	if len(s.scores) == 0 {
		return out
	}
	var total float64
	for _, v := range s.scores {
		total += v
	}
	out.MeanScore = total / float64(len(s.scores))
	return out
}

// Package selector picks and orders the cards for a study session.
package selector

import (
	"sort"
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

// Options configures session selection.
type Options struct {
	// Tags filters cards to those carrying at least one of these tags.
	// Empty means no filtering.
	Tags []string
	// MaxCount caps the session length. Zero or negative selects nothing.
	MaxCount int
	// IncludeUpcoming also selects cards that are not yet due, after all
	// due and unreviewed cards.
	IncludeUpcoming bool
}

// ForSession returns cards for a session in priority order: overdue cards
// (most overdue first), then never-reviewed cards (input order), then, when
// requested, upcoming cards (soonest due first). The buckets are never
// interleaved. The input is not mutated.
func ForSession(cards []domain.Card, opts Options, now time.Time) []domain.Card {
	if opts.MaxCount <= 0 {
		return nil
	}

	var overdue, unreviewed, upcoming []domain.Card
	for _, c := range cards {
		if len(opts.Tags) > 0 && !c.HasAnyTag(opts.Tags) {
			continue
		}
		switch {
		case c.LastReviewed == nil:
			unreviewed = append(unreviewed, c)
		case c.IsDue(now):
			overdue = append(overdue, c)
		case opts.IncludeUpcoming:
			upcoming = append(upcoming, c)
		}
	}

	// An earlier due time means more seconds overdue, so both buckets sort
	// ascending by due time. Stable keeps tied cards in input order.
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].NextReview.Before(overdue[j].NextReview)
	})
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextReview.Before(upcoming[j].NextReview)
	})

	out := make([]domain.Card, 0, len(overdue)+len(unreviewed)+len(upcoming))
	out = append(out, overdue...)
	out = append(out, unreviewed...)
	out = append(out, upcoming...)
	if len(out) > opts.MaxCount {
		out = out[:opts.MaxCount:opts.MaxCount]
	}
	return out
}

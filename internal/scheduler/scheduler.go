// Package scheduler implements the spaced-repetition transition applied
// after each card review: a score in [0, 1] maps the card's current
// interval and ease factor to its next interval, ease, and due time.
package scheduler

import (
	"math"
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

// Ease factor bounds. The ease is clamped into [MinEase, MaxEase] on every
// transition; no other component relaxes or re-checks this.
const (
	MinEase = 1.3
	MaxEase = 3.0
)

// Next computes the scheduling state that follows a review.
//
//   - score == 0: the interval resets to 1 day and the ease drops by 0.2.
//   - 0 < score < 1: the interval scales by score*ease (at least 1 day) and
//     the ease drops by 0.1.
//   - score == 1: the interval multiplies by the ease (1 day if the card was
//     never scheduled) and the ease grows by 0.1.
//
// Intervals are fractional days; repeated partial scores produce non-integral
// values on purpose. Scores outside [0, 1] are a caller contract violation.
func Next(intervalDays, easeFactor, score float64, reviewTime time.Time) (float64, float64, time.Time) {
	switch {
	case score == 0:
		intervalDays = 1
		easeFactor = math.Max(MinEase, easeFactor-0.2)
	case score < 1:
		intervalDays = math.Max(1, intervalDays*score*easeFactor)
		easeFactor = math.Max(MinEase, easeFactor-0.1)
	default:
		if intervalDays == 0 {
			intervalDays = 1
		} else {
			intervalDays *= easeFactor
		}
		easeFactor = math.Min(MaxEase, easeFactor+0.1)
	}
	return intervalDays, easeFactor, reviewTime.Add(Interval(intervalDays))
}

// Interval converts a fractional day count to a duration.
func Interval(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

// ApplyReview returns a new card reflecting one review at reviewTime. The
// input card is never mutated: the history is copied before the new entry is
// appended, so a retained prior value stays intact.
func ApplyReview(card domain.Card, score float64, reviewTime time.Time) domain.Card {
	intervalDays, easeFactor, nextReview := Next(card.IntervalDays, card.EaseFactor, score, reviewTime)

	out := card.Clone()
	reviewed := reviewTime
	out.LastReviewed = &reviewed
	out.NextReview = nextReview
	out.EaseFactor = easeFactor
	out.IntervalDays = intervalDays
	out.ReviewCount++
	out.History = append(out.History, domain.Review{
		Date:         reviewTime,
		Score:        score,
		IntervalDays: intervalDays,
	})
	return out
}

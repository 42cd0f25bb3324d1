// Package stats aggregates a card collection into a dashboard snapshot.
package stats

import (
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

// MasteryThreshold is the review count at which a card counts as mastered.
const MasteryThreshold = 10

// Mastery bucket names, keyed by review count: 0 is new, 1..MasteryThreshold-1
// is learning, everything above is mastered.
const (
	MasteryNew      = "new"
	MasteryLearning = "learning"
	MasteryMastered = "mastered"
)

// Statistics is a point-in-time snapshot over the whole collection.
type Statistics struct {
	TotalCards        int            `json:"total_cards"`
	DueNow            int            `json:"cards_due_today"`
	DueThisWeek       int            `json:"cards_due_this_week"`
	ReviewedToday     int            `json:"cards_reviewed_today"`
	StreakDays        int            `json:"review_streak_days"`
	AverageEaseFactor float64        `json:"average_ease_factor"`
	Mastery           map[string]int `json:"mastery_distribution"`
	Tags              map[string]int `json:"tag_distribution"`
}

// Calculate produces a snapshot for the given time. It never fails: an empty
// collection yields zero counts and the default ease factor as the average.
func Calculate(cards []domain.Card, now time.Time) Statistics {
	s := Statistics{
		AverageEaseFactor: domain.DefaultEaseFactor,
		Mastery:           map[string]int{MasteryNew: 0, MasteryLearning: 0, MasteryMastered: 0},
		Tags:              map[string]int{},
	}
	if len(cards) == 0 {
		return s
	}

	todayStart := startOfDay(now)
	weekEnd := todayStart.AddDate(0, 0, 7)

	var easeSum float64
	for _, c := range cards {
		if c.IsDue(now) {
			s.DueNow++
		}
		if !c.NextReview.After(weekEnd) {
			s.DueThisWeek++
		}
		if c.LastReviewed != nil && !c.LastReviewed.Before(todayStart) {
			s.ReviewedToday++
		}
		switch {
		case c.ReviewCount == 0:
			s.Mastery[MasteryNew]++
		case c.ReviewCount < MasteryThreshold:
			s.Mastery[MasteryLearning]++
		default:
			s.Mastery[MasteryMastered]++
		}
		for _, tag := range c.Tags {
			s.Tags[tag]++
		}
		easeSum += c.EaseFactor
	}

	s.TotalCards = len(cards)
	s.AverageEaseFactor = easeSum / float64(len(cards))
	s.StreakDays = Streak(cards, now)
	return s
}

// date is a calendar day in the reference location.
type date struct {
	year  int
	month time.Month
	day   int
}

// Streak counts consecutive calendar days ending at now's date on which at
// least one review was recorded, across all cards. A day without a review,
// including today, ends the count. Review dates are collected into a set
// once, so sparse histories cost one lookup per streak day, not a sort.
func Streak(cards []domain.Card, now time.Time) int {
	reviewed := make(map[date]struct{})
	for _, c := range cards {
		for _, r := range c.History {
			y, m, d := r.Date.In(now.Location()).Date()
			reviewed[date{y, m, d}] = struct{}{}
		}
	}

	streak := 0
	for cur := now; ; cur = cur.AddDate(0, 0, -1) {
		y, m, d := cur.Date()
		if _, ok := reviewed[date{y, m, d}]; !ok {
			return streak
		}
		streak++
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

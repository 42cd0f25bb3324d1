package stats

import (
	"math"
	"testing"
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func cardWith(reviewCount int, nextReview time.Time, tags ...string) domain.Card {
	c := domain.NewCard(domain.KindQA, "q", "a", tags, now.Add(-60*24*time.Hour))
	c.NextReview = nextReview
	c.ReviewCount = reviewCount
	if reviewCount > 0 {
		reviewed := now.Add(-48 * time.Hour)
		c.LastReviewed = &reviewed
	}
	return c
}

func withHistory(c domain.Card, dates ...time.Time) domain.Card {
	for _, d := range dates {
		c.History = append(c.History, domain.Review{Date: d, Score: 1, IntervalDays: 1})
	}
	c.ReviewCount = len(c.History)
	if len(dates) > 0 {
		last := dates[len(dates)-1]
		c.LastReviewed = &last
	}
	return c
}

func TestCalculateEmptyCollection(t *testing.T) {
	s := Calculate(nil, now)

	if s.TotalCards != 0 || s.DueNow != 0 || s.DueThisWeek != 0 || s.ReviewedToday != 0 {
		t.Errorf("expected all counts zero, got %+v", s)
	}
	if s.AverageEaseFactor != domain.DefaultEaseFactor {
		t.Errorf("expected average ease %v for empty collection, got %v",
			domain.DefaultEaseFactor, s.AverageEaseFactor)
	}
	if s.StreakDays != 0 {
		t.Errorf("expected zero streak, got %d", s.StreakDays)
	}
	for _, bucket := range []string{MasteryNew, MasteryLearning, MasteryMastered} {
		if n, ok := s.Mastery[bucket]; !ok || n != 0 {
			t.Errorf("expected mastery bucket %q present with count 0, got %d (present=%v)", bucket, n, ok)
		}
	}
	if len(s.Tags) != 0 {
		t.Errorf("expected empty tag distribution, got %v", s.Tags)
	}
}

func TestCalculateCounts(t *testing.T) {
	todayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	cards := []domain.Card{
		cardWith(0, now.Add(-time.Hour)),            // due now
		cardWith(3, now.Add(time.Hour)),             // due later today -> this week
		cardWith(5, todayStart.AddDate(0, 0, 6)),    // due in six days -> this week
		cardWith(12, todayStart.AddDate(0, 0, 8)),   // due past the window
		cardWith(1, now.Add(-30*24*time.Hour)),      // long overdue
	}
	// One card reviewed earlier today.
	reviewed := now.Add(-2 * time.Hour)
	cards[1].LastReviewed = &reviewed

	s := Calculate(cards, now)

	if s.TotalCards != 5 {
		t.Errorf("expected 5 total cards, got %d", s.TotalCards)
	}
	if s.DueNow != 2 {
		t.Errorf("expected 2 cards due now, got %d", s.DueNow)
	}
	if s.DueThisWeek != 4 {
		t.Errorf("expected 4 cards due this week, got %d", s.DueThisWeek)
	}
	if s.ReviewedToday != 1 {
		t.Errorf("expected 1 card reviewed today, got %d", s.ReviewedToday)
	}
}

func TestCalculateAverageEase(t *testing.T) {
	a := cardWith(0, now)
	a.EaseFactor = 2.0
	b := cardWith(0, now)
	b.EaseFactor = 3.0

	s := Calculate([]domain.Card{a, b}, now)

	if math.Abs(s.AverageEaseFactor-2.5) > 1e-9 {
		t.Errorf("expected average ease 2.5, got %v", s.AverageEaseFactor)
	}
}

func TestCalculateMasteryBuckets(t *testing.T) {
	cards := []domain.Card{
		cardWith(0, now),
		cardWith(1, now),
		cardWith(MasteryThreshold-1, now),
		cardWith(MasteryThreshold, now),
		cardWith(40, now),
	}

	s := Calculate(cards, now)

	if s.Mastery[MasteryNew] != 1 {
		t.Errorf("expected 1 new card, got %d", s.Mastery[MasteryNew])
	}
	if s.Mastery[MasteryLearning] != 2 {
		t.Errorf("expected 2 learning cards, got %d", s.Mastery[MasteryLearning])
	}
	if s.Mastery[MasteryMastered] != 2 {
		t.Errorf("expected 2 mastered cards, got %d", s.Mastery[MasteryMastered])
	}
}

func TestCalculateTagDistribution(t *testing.T) {
	cards := []domain.Card{
		cardWith(0, now, "go", "testing"),
		cardWith(0, now, "go"),
		cardWith(0, now),
	}

	s := Calculate(cards, now)

	if s.Tags["go"] != 2 {
		t.Errorf("expected tag go on 2 cards, got %d", s.Tags["go"])
	}
	if s.Tags["testing"] != 1 {
		t.Errorf("expected tag testing on 1 card, got %d", s.Tags["testing"])
	}
	if len(s.Tags) != 2 {
		t.Errorf("expected 2 distinct tags, got %v", s.Tags)
	}
}

func TestStreak(t *testing.T) {
	day := func(daysAgo int) time.Time {
		return now.AddDate(0, 0, -daysAgo)
	}

	t.Run("no history means no streak", func(t *testing.T) {
		if got := Streak([]domain.Card{cardWith(0, now)}, now); got != 0 {
			t.Errorf("expected streak 0, got %d", got)
		}
	})

	t.Run("streak requires a review today", func(t *testing.T) {
		cards := []domain.Card{withHistory(cardWith(0, now), day(1), day(2))}
		if got := Streak(cards, now); got != 0 {
			t.Errorf("expected streak 0 without a review today, got %d", got)
		}
	})

	t.Run("counts back to the first missing day", func(t *testing.T) {
		// Reviews today and the two previous days, then a gap at day 3.
		cards := []domain.Card{
			withHistory(cardWith(0, now), day(2), day(1)),
			withHistory(cardWith(0, now), day(0), day(4)),
		}
		if got := Streak(cards, now); got != 3 {
			t.Errorf("expected streak 3, got %d", got)
		}
	})

	t.Run("several reviews on one day count once", func(t *testing.T) {
		cards := []domain.Card{
			withHistory(cardWith(0, now), day(0), day(0).Add(-time.Hour), day(1)),
		}
		if got := Streak(cards, now); got != 2 {
			t.Errorf("expected streak 2, got %d", got)
		}
	})
}

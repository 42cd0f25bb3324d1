package selector

import (
	"testing"
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// reviewedCard returns a card whose next review falls at the given offset
// from now. Negative offsets make it overdue.
func reviewedCard(question string, dueOffset time.Duration, tags ...string) domain.Card {
	c := domain.NewCard(domain.KindQA, question, "answer", tags, now.Add(-30*24*time.Hour))
	reviewed := now.Add(-7 * 24 * time.Hour)
	c.LastReviewed = &reviewed
	c.ReviewCount = 1
	c.NextReview = now.Add(dueOffset)
	return c
}

func newCard(question string, tags ...string) domain.Card {
	return domain.NewCard(domain.KindQA, question, "answer", tags, now.Add(-time.Hour))
}

func questions(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Question
	}
	return out
}

func TestForSessionOrdering(t *testing.T) {
	cards := []domain.Card{
		reviewedCard("upcoming-late", 48*time.Hour),
		newCard("fresh-a"),
		reviewedCard("overdue-slightly", -time.Hour),
		reviewedCard("upcoming-soon", 2*time.Hour),
		reviewedCard("overdue-badly", -72*time.Hour),
		newCard("fresh-b"),
	}

	got := ForSession(cards, Options{MaxCount: 10, IncludeUpcoming: true}, now)

	expected := []string{
		"overdue-badly", "overdue-slightly", // most overdue first
		"fresh-a", "fresh-b", // input order
		"upcoming-soon", "upcoming-late", // soonest due first
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d cards, got %d", len(expected), len(got))
	}
	for i, q := range questions(got) {
		if q != expected[i] {
			t.Errorf("position %d: expected %q, got %q", i, expected[i], q)
		}
	}
}

func TestForSessionExcludesUpcomingByDefault(t *testing.T) {
	cards := []domain.Card{
		reviewedCard("upcoming", 2*time.Hour),
		reviewedCard("overdue", -time.Hour),
		newCard("fresh"),
	}

	got := ForSession(cards, Options{MaxCount: 10}, now)

	if len(got) != 2 {
		t.Fatalf("expected 2 cards, got %d: %v", len(got), questions(got))
	}
	for _, c := range got {
		if c.Question == "upcoming" {
			t.Error("a not-yet-due card was selected without IncludeUpcoming")
		}
	}
}

func TestForSessionTagFilter(t *testing.T) {
	cards := []domain.Card{
		newCard("go-card", "go"),
		newCard("rust-card", "rust"),
		newCard("both-card", "go", "rust"),
		newCard("untagged"),
	}

	t.Run("single tag keeps any card carrying it", func(t *testing.T) {
		got := ForSession(cards, Options{Tags: []string{"go"}, MaxCount: 10}, now)
		if len(got) != 2 {
			t.Fatalf("expected 2 cards, got %v", questions(got))
		}
	})

	t.Run("multiple tags use OR semantics", func(t *testing.T) {
		got := ForSession(cards, Options{Tags: []string{"go", "rust"}, MaxCount: 10}, now)
		if len(got) != 3 {
			t.Fatalf("expected 3 cards, got %v", questions(got))
		}
		for _, c := range got {
			if !c.HasAnyTag([]string{"go", "rust"}) {
				t.Errorf("card %q does not carry any requested tag", c.Question)
			}
		}
	})
}

func TestForSessionMaxCount(t *testing.T) {
	cards := []domain.Card{
		reviewedCard("overdue-badly", -72*time.Hour),
		reviewedCard("overdue-slightly", -time.Hour),
		newCard("fresh"),
	}

	t.Run("truncates to the limit", func(t *testing.T) {
		got := ForSession(cards, Options{MaxCount: 2}, now)
		if len(got) != 2 {
			t.Fatalf("expected 2 cards, got %d", len(got))
		}
		if got[0].Question != "overdue-badly" {
			t.Errorf("truncation changed the priority order: %v", questions(got))
		}
	})

	t.Run("limit above available returns everything", func(t *testing.T) {
		if got := ForSession(cards, Options{MaxCount: 100}, now); len(got) != 3 {
			t.Fatalf("expected all 3 cards, got %d", len(got))
		}
	})

	t.Run("zero and negative select nothing", func(t *testing.T) {
		if got := ForSession(cards, Options{MaxCount: 0}, now); len(got) != 0 {
			t.Fatalf("expected no cards for MaxCount 0, got %d", len(got))
		}
		if got := ForSession(cards, Options{MaxCount: -5}, now); len(got) != 0 {
			t.Fatalf("expected no cards for negative MaxCount, got %d", len(got))
		}
	})
}

func TestForSessionDoesNotMutateInput(t *testing.T) {
	cards := []domain.Card{
		reviewedCard("b", -time.Hour),
		reviewedCard("a", -72*time.Hour),
	}

	ForSession(cards, Options{MaxCount: 10}, now)

	if cards[0].Question != "b" || cards[1].Question != "a" {
		t.Errorf("input slice was reordered: %v", questions(cards))
	}
}

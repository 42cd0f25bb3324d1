// Command cardbox is a spaced-repetition flashcard tool backed by a JSON
// card collection. The default mode runs a review session over the cards
// that are due; other modes print statistics, export to Anki, or import
// markdown decks.
package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/mfitzmaurice/cardbox/internal/anki"
	"github.com/mfitzmaurice/cardbox/internal/config"
	"github.com/mfitzmaurice/cardbox/internal/deck"
	"github.com/mfitzmaurice/cardbox/internal/domain"
	"github.com/mfitzmaurice/cardbox/internal/selector"
	"github.com/mfitzmaurice/cardbox/internal/session"
	"github.com/mfitzmaurice/cardbox/internal/stats"
	"github.com/mfitzmaurice/cardbox/internal/store"
)

func main() {
	def := config.Default()

	flags := pflag.NewFlagSet("cardbox", pflag.ExitOnError)
	configPath := flags.String("config", config.DefaultFilePath(), "Path to the YAML config file")
	flags.String("store_path", def.StorePath, "Path to the card collection JSON file")
	flags.Int("quiz_count", def.QuizCount, "Maximum cards per review session")
	flags.String("deck_name", def.DeckName, "Deck name used for Anki exports")
	flags.String("cache_dir", def.CacheDir, "Directory for clones of git deck sources")

	showStats := flags.Bool("stats", false, "Print collection statistics and exit")
	exportPath := flags.String("export", "", "Export cards to an Anki .apkg at this path and exit")
	importSrc := flags.String("import", "", "Import markdown decks from a directory or git URL and exit")
	tagsCSV := flags.String("tags", "", "Comma-separated tag filter (review and export)")
	includeAll := flags.Bool("all", false, "Include cards that are not yet due in the session")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st := store.New(cfg.StorePath, slog.Default())
	tags := domain.NormalizeTags(strings.Split(*tagsCSV, ","))

	switch {
	case *showStats:
		err = printStats(st)
	case *exportPath != "":
		err = runExport(st, cfg.DeckName, *exportPath, tags)
	case *importSrc != "":
		err = runImport(st, cfg.CacheDir, *importSrc)
	default:
		err = runQuiz(st, cfg.QuizCount, tags, *includeAll)
	}
	if err != nil {
		log.Fatalf("cardbox: %v", err)
	}
}

func printStats(st *store.Store) error {
	col, err := st.Load()
	if err != nil {
		return err
	}
	s := stats.Calculate(col.Cards, time.Now())

	fmt.Printf("Total cards:        %d\n", s.TotalCards)
	fmt.Printf("Due now:            %d\n", s.DueNow)
	fmt.Printf("Due this week:      %d\n", s.DueThisWeek)
	fmt.Printf("Reviewed today:     %d\n", s.ReviewedToday)
	fmt.Printf("Review streak:      %d days\n", s.StreakDays)
	fmt.Printf("Average ease:       %.2f\n", s.AverageEaseFactor)
	fmt.Printf("Mastery:            new %d / learning %d / mastered %d\n",
		s.Mastery[stats.MasteryNew], s.Mastery[stats.MasteryLearning], s.Mastery[stats.MasteryMastered])
	if len(s.Tags) > 0 {
		fmt.Println("Tags:")
		for tag, n := range s.Tags {
			fmt.Printf("  %-18s %d\n", tag, n)
		}
	}
	return nil
}

func runExport(st *store.Store, deckName, outPath string, tags []string) error {
	col, err := st.Load()
	if err != nil {
		return err
	}
	n, err := anki.NewExporter(deckName).Export(col.Cards, outPath, tags)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("No cards matched; nothing exported.")
		return nil
	}
	fmt.Printf("Exported %d cards to %s\n", n, outPath)
	return nil
}

func runImport(st *store.Store, cacheDir, src string) error {
	imp := &deck.Importer{Store: st, CacheDir: cacheDir}
	added, err := imp.ImportSource(src)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d new cards from %s\n", added, src)
	return nil
}

func runQuiz(st *store.Store, count int, tags []string, includeAll bool) error {
	col, err := st.Load()
	if err != nil {
		return err
	}
	cards := selector.ForSession(col.Cards, selector.Options{
		Tags:            tags,
		MaxCount:        count,
		IncludeUpcoming: includeAll,
	}, time.Now())
	if len(cards) == 0 {
		fmt.Println("No cards due for review.")
		return nil
	}

	sess := session.New(st, cards)
	in := bufio.NewReader(os.Stdin)

	for {
		card, ok := sess.Current()
		if !ok {
			break
		}
		pos, total := sess.Position()
		fmt.Printf("\n[%d/%d] %s\n", pos, total, card.Question)
		if card.Kind == domain.KindMultipleChoice {
			for i, opt := range card.Options {
				fmt.Printf("  %d) %s\n", i+1, opt)
			}
		}

		fmt.Print("Press enter to reveal the answer...")
		if _, err := in.ReadString('\n'); err != nil {
			break
		}
		fmt.Printf("A: %s\n", card.Answer)

		score, quit := readScore(in)
		if quit {
			break
		}
		if err := sess.Submit(score); err != nil {
			return err
		}
	}

	sum := sess.Summary()
	fmt.Printf("\nReviewed %d cards", sum.Reviewed)
	if sum.Reviewed > 0 {
		fmt.Printf(", average score %.2f", sum.MeanScore)
	}
	fmt.Println()
	return nil
}

// readScore prompts until the user gives a recognized score or quits.
// Aborting keeps every already-submitted review persisted.
func readScore(in *bufio.Reader) (score float64, quit bool) {
	for {
		fmt.Print("Score [0 = wrong, 5 = partial, 1 = correct, q = quit]: ")
		line, err := in.ReadString('\n')
		if err != nil {
			return 0, true
		}
		switch strings.TrimSpace(line) {
		case "0":
			return 0, false
		case "5":
			return 0.5, false
		case "1":
			return 1, false
		case "q", "Q":
			return 0, true
		}
	}
}

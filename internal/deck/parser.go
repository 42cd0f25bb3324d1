// Package deck imports plain-text card decks into the store.
//
// A deck is a set of markdown files holding Q:/A:/T: blocks. T: carries
// comma-separated tags. Cards are separated by "---" or by the next Q: line.
package deck

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mfitzmaurice/cardbox/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	tagsPrefix     = "T:"
)

// Parsed is one card as read from a deck file, before it gains an identity
// or scheduling state.
type Parsed struct {
	Question string
	Answer   string
	Tags     []string
}

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingTags
)

// ParseFile reads the deck file at path and extracts all cards.
func ParseFile(path string) ([]Parsed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts all cards from r. Cards missing a question or an answer
// are skipped rather than reported; a deck file is allowed to hold prose
// around its cards.
func Parse(r io.Reader) ([]Parsed, error) {
	scanner := bufio.NewScanner(r)
	var cards []Parsed
	var current Parsed
	var block []string
	mode := seeking

	flush := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch mode {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		case readingTags:
			current.Tags = splitTags(content)
		}
		block = nil
	}
	finish := func() {
		flush()
		if current.Question != "" && current.Answer != "" {
			cards = append(cards, current)
		}
		current = Parsed{}
		mode = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "---":
			finish()
		case strings.HasPrefix(line, questionPrefix):
			if mode != seeking { // a new question always starts a new card
				finish()
			}
			mode = readingQuestion
			block = append(block, rest(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			flush()
			mode = readingAnswer
			block = append(block, rest(line, answerPrefix))
		case strings.HasPrefix(line, tagsPrefix):
			flush()
			mode = readingTags
			block = append(block, rest(line, tagsPrefix))
		default:
			if mode != seeking {
				block = append(block, line)
			}
		}
	}
	finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// rest strips the block prefix and at most one following space.
func rest(line, prefix string) string {
	return strings.TrimPrefix(line[len(prefix):], " ")
}

func splitTags(content string) []string {
	return domain.NormalizeTags(strings.Split(strings.ReplaceAll(content, "\n", ","), ","))
}

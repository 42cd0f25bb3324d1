package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns a stable identifier for a card's content, used to keep
// re-imports idempotent. Case, surrounding whitespace, and line-ending
// differences do not change it. Tags are excluded so that retagging a deck
// does not duplicate its cards.
func Fingerprint(question, answer string) string {
	sum := sha256.Sum256([]byte(normalize(question) + "\n" + normalize(answer)))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "\r\n", "\n")
}

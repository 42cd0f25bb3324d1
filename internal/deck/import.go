package deck

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfitzmaurice/cardbox/internal/domain"
	"github.com/mfitzmaurice/cardbox/internal/gitsource"
	"github.com/mfitzmaurice/cardbox/internal/store"
)

// Importer reconciles deck files into the card store.
type Importer struct {
	Store *store.Store
	// CacheDir holds local clones of git deck sources.
	CacheDir string
	Logger   *slog.Logger
	// Now stamps created cards; nil means time.Now.
	Now func() time.Time
}

func (imp *Importer) logger() *slog.Logger {
	if imp.Logger != nil {
		return imp.Logger
	}
	return slog.Default()
}

func (imp *Importer) now() time.Time {
	if imp.Now != nil {
		return imp.Now()
	}
	return time.Now()
}

// ImportSource imports from a local directory or, when src looks like a git
// repository URL, from a clone kept under CacheDir.
func (imp *Importer) ImportSource(src string) (int, error) {
	dir := src
	if gitsource.IsRepoURL(src) {
		local, err := gitsource.LocalPath(imp.CacheDir, src)
		if err != nil {
			return 0, err
		}
		if err := gitsource.Sync(src, local); err != nil {
			return 0, err
		}
		dir = local
	}
	return imp.ImportDir(dir)
}

// ImportDir walks dir for .md deck files and adds every card not already in
// the store. Existing cards are matched by content fingerprint, so review
// state survives re-imports. Import is add-only: cards removed from deck
// files keep their stored state, since the files know nothing about it.
// Returns the number of cards added.
func (imp *Importer) ImportDir(dir string) (int, error) {
	col, err := imp.Store.Load()
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(col.Cards))
	for _, c := range col.Cards {
		known[Fingerprint(c.Question, c.Answer)] = true
	}

	var added, skipped, fileErrs int
	now := imp.now()

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		parsed, parseErr := ParseFile(path)
		if parseErr != nil {
			fileErrs++
			imp.logger().Warn("failed to parse deck file", "path", path, "error", parseErr)
			return nil
		}
		for _, p := range parsed {
			fp := Fingerprint(p.Question, p.Answer)
			if known[fp] {
				skipped++
				continue
			}
			known[fp] = true
			col.Cards = append(col.Cards, domain.NewCard(domain.KindQA, p.Question, p.Answer, p.Tags, now))
			added++
		}
		return nil
	})
	if walkErr != nil {
		return 0, fmt.Errorf("failed to walk deck directory %s: %w", dir, walkErr)
	}

	if added > 0 {
		if err := imp.Store.Save(col); err != nil {
			return 0, err
		}
	}
	imp.logger().Info("deck import complete",
		"dir", dir, "added", added, "already_known", skipped, "file_errors", fileErrs)
	return added, nil
}

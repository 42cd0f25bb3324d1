// Package gitsource keeps a local clone of a git repository holding deck
// files, cloning on first use and pulling afterwards.
package gitsource

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// IsRepoURL reports whether src names a remote git repository rather than a
// local path: an http(s) or ssh URL, or an scp-style user@host:path spec.
func IsRepoURL(src string) bool {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "ssh://") || strings.HasPrefix(src, "git://") {
		return true
	}
	return strings.Contains(src, "@") && strings.Contains(src, ":")
}

// LocalPath maps a repository URL to a stable clone location under baseDir,
// keyed by host and repository path.
func LocalPath(baseDir, repoURL string) (string, error) {
	if parsed, err := url.Parse(repoURL); err == nil && parsed.Host != "" {
		return filepath.Join(baseDir, parsed.Host, strings.TrimSuffix(parsed.Path, ".git")), nil
	}

	// scp-style: user@host:path.git
	if at := strings.Index(repoURL, "@"); at >= 0 {
		if colon := strings.Index(repoURL[at:], ":"); colon >= 0 {
			host := repoURL[at+1 : at+colon]
			path := strings.TrimSuffix(repoURL[at+colon+1:], ".git")
			return filepath.Join(baseDir, host, path), nil
		}
	}
	return "", fmt.Errorf("gitsource: cannot derive local path for %q", repoURL)
}

// Sync clones url into localPath, or pulls the latest changes if a clone
// already exists there.
func Sync(url, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("cloning deck repository", "url", url, "path", localPath)
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return fmt.Errorf("failed to clone %s: %w", url, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open repository at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree at %s: %w", localPath, err)
	}

	slog.Info("pulling deck repository", "path", localPath)
	if err := worktree.Pull(&git.PullOptions{RemoteName: "origin"}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull %s: %w", localPath, err)
	}
	return nil
}

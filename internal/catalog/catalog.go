// Package catalog loads the immutable flashcard catalog from configured
// content sources and serves lookups by card ID.
//
// A Catalog is built once and never mutated; reloading produces a fresh
// Catalog the caller swaps in. Scheduling state never lives here.
package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mnemo/mnemod/internal/domain"
	"github.com/mnemo/mnemod/internal/gitsource"
)

// Catalog is an immutable, ID-keyed collection of flashcards.
type Catalog struct {
	byID  map[string]domain.Flashcard
	cards []domain.Flashcard
}

// New builds a catalog from the given cards. Duplicate IDs (the same content
// appearing in more than one source file) collapse to a single card.
func New(cards []domain.Flashcard) *Catalog {
	c := &Catalog{byID: make(map[string]domain.Flashcard, len(cards))}
	for _, card := range cards {
		if _, ok := c.byID[card.ID]; ok {
			continue
		}
		c.byID[card.ID] = card
		c.cards = append(c.cards, card)
	}
	return c
}

// Get returns the card with the given ID.
func (c *Catalog) Get(id string) (domain.Flashcard, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Cards returns all cards in load order. The returned slice is shared;
// callers must not modify it.
func (c *Catalog) Cards() []domain.Flashcard {
	return c.cards
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Loader builds catalogs from a set of content sources. A source is either a
// local directory or a git URL; git sources are materialized under ReposDir
// by Sync and then walked like local ones.
type Loader struct {
	Sources  []string
	ReposDir string
}

// IsGitSource reports whether the source string names a git repository
// rather than a local path.
func IsGitSource(source string) bool {
	return strings.HasSuffix(source, ".git") ||
		strings.HasPrefix(source, "git@") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "http://")
}

// Sync clones or pulls every git source. Local sources are untouched.
// A failing source is logged and skipped; the others still sync.
func (l *Loader) Sync() {
	for _, source := range l.Sources {
		if !IsGitSource(source) {
			continue
		}
		localPath, err := gitLocalPath(l.ReposDir, source)
		if err != nil {
			slog.Error("cannot determine local path for git source", "url", source, "error", err)
			continue
		}
		if err := gitsource.Sync(source, localPath); err != nil {
			slog.Error("failed to sync git source", "url", source, "error", err)
		}
	}
}

// Load walks every source and builds a fresh catalog. Per-file parse errors
// are collected and logged but do not fail the load; a bad deck file should
// not take the whole catalog down.
func (l *Loader) Load() (*Catalog, error) {
	var cards []domain.Flashcard
	var parseErrs []error

	for _, source := range l.Sources {
		root := source
		if IsGitSource(source) {
			localPath, err := gitLocalPath(l.ReposDir, source)
			if err != nil {
				parseErrs = append(parseErrs, fmt.Errorf("source %s: %w", source, err))
				continue
			}
			root = localPath
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			var fileCards []domain.Flashcard
			var parseErr error
			switch strings.ToLower(filepath.Ext(d.Name())) {
			case ".md":
				fileCards, parseErr = ParseFile(path)
			case ".xlsx":
				fileCards, parseErr = ParseXLSX(path)
			default:
				return nil
			}

			if parseErr != nil {
				parseErrs = append(parseErrs, fmt.Errorf("parsing %s: %w", path, parseErr))
			}
			cards = append(cards, fileCards...)
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walking source %s: %w", source, walkErr)
		}
	}

	for _, err := range parseErrs {
		slog.Warn("deck file skipped", "error", err)
	}

	cat := New(cards)
	slog.Info("catalog loaded", "cards", cat.Len(), "sources", len(l.Sources), "file_errors", len(parseErrs))
	return cat, nil
}

// gitLocalPath maps a git URL to its checkout directory under baseDir.
// Handles https/http URLs and scp-like git@host:path forms.
func gitLocalPath(baseDir, repoURL string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitized := strings.TrimSuffix(parsed.Path, ".git")
	return filepath.Join(baseDir, parsed.Host, sanitized), nil
}

// ABOUTME: Workspace file search backing @file mention autocomplete
// ABOUTME: git ls-files when available, shallow walk otherwise; fuzzy-ranked

package fsearch

import (
	"context"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ternchat/tern/internal/fuzzy"
)

const (
	cacheTTL     = 30 * time.Second
	walkMaxDepth = 3
	maxFiles     = 5000
)

// Searcher finds files under a root directory. Scans are cached and
// deduplicated, so concurrent searches share one directory listing.
type Searcher struct {
	root string

	mu      sync.Mutex
	files   []string
	scanned time.Time
	group   singleflight.Group
}

// New creates a searcher rooted at dir.
func New(dir string) *Searcher {
	return &Searcher{root: dir}
}

// Search returns up to limit workspace-relative paths ranked against
// query. An empty query returns paths in listing order.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	files, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	if query == "" {
		if len(files) > limit {
			files = files[:limit]
		}
		return files, nil
	}

	matches := fuzzy.Find(query, files)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = files[m.Index]
	}
	return out, nil
}

// Invalidate drops the cached listing.
func (s *Searcher) Invalidate() {
	s.mu.Lock()
	s.scanned = time.Time{}
	s.mu.Unlock()
}

func (s *Searcher) list(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if time.Since(s.scanned) < cacheTTL {
		files := s.files
		s.mu.Unlock()
		return files, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("scan", func() (any, error) {
		files := scanGit(ctx, s.root)
		if files == nil {
			files = scanWalk(s.root)
		}
		sort.Strings(files)

		s.mu.Lock()
		s.files = files
		s.scanned = time.Now()
		s.mu.Unlock()
		return files, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// scanGit lists tracked and untracked-but-not-ignored files via git.
// Returns nil when git is unavailable or root is not a repository.
func scanGit(ctx context.Context, root string) []string {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}

	files := make([]string, 0, len(lines))
	for _, rel := range lines {
		if rel == "" {
			continue
		}
		files = append(files, rel)
		if len(files) >= maxFiles {
			break
		}
	}
	return files
}

// scanWalk is the non-git fallback: a shallow walk skipping hidden
// directories and dependency trees.
func scanWalk(root string) []string {
	var files []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" || name == "__pycache__" {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if strings.Count(rel, string(filepath.Separator)) >= walkMaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		files = append(files, rel)
		if len(files) >= maxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	return files
}

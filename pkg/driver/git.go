package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitSource names a directory of suites inside a git repository.
type GitSource struct {
	URL string
	// Ref is a branch, tag or revision. Empty means the remote HEAD.
	Ref string
	// Path is the directory inside the repository to search for suites.
	Path string
}

// FetchSuites checks the source out into cacheDir and returns the suite
// files (*.yml, *.yaml) under its Path, sorted. Checkouts are keyed by the
// resolved commit, so a cached commit is reused.
func FetchSuites(ctx context.Context, src GitSource, cacheDir string) ([]string, error) {
	url := strings.TrimSpace(src.URL)
	if url == "" {
		return nil, fmt.Errorf("git source: URL required")
	}
	if cacheDir == "" {
		return nil, fmt.Errorf("git source: cache directory required")
	}
	baseDir := filepath.Join(cacheDir, "suites", sanitizePathSegment(url))
	checkout, err := ensureCheckout(ctx, baseDir, url, strings.TrimSpace(src.Ref))
	if err != nil {
		return nil, err
	}
	root := checkout
	if sub := strings.TrimSpace(src.Path); sub != "" {
		root = filepath.Join(checkout, filepath.FromSlash(sub))
		rel, err := filepath.Rel(checkout, root)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return nil, fmt.Errorf("git source: path %q escapes the repository", sub)
		}
	}
	return findSuiteFiles(root)
}

func ensureCheckout(ctx context.Context, baseDir, url, ref string) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}
	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := resolveRef(repo, ref)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}

	targetDir := filepath.Join(baseDir, sanitizePathSegment(pinnedVersion(ref, hash.String())))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return targetDir, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git checkout %s: %w", ref, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return targetDir, nil
}

func resolveRef(repo *git.Repository, ref string) (*plumbing.Hash, error) {
	if ref == "" {
		head, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolve HEAD: %w", err)
		}
		hash := head.Hash()
		return &hash, nil
	}
	candidates := []plumbing.Revision{
		plumbing.Revision("refs/tags/" + ref),
		plumbing.Revision("refs/remotes/origin/" + ref),
		plumbing.Revision("refs/heads/" + ref),
		plumbing.Revision(ref),
	}
	var lastErr error
	for _, rev := range candidates {
		hash, err := repo.ResolveRevision(rev)
		if err == nil {
			return hash, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("resolve revision %s: %w", ref, lastErr)
}

func pinnedVersion(ref, commit string) string {
	if ref == "" || ref == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", ref, commit)
}

func findSuiteFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".yml", ".yaml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

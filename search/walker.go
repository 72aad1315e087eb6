package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"doc-search/config"
)

// FileWalker lists searchable documents under a file or directory.
// Results are in lexical walk order, which is the discovery order of a search.
type FileWalker struct {
	types     map[string]bool
	recursive bool
	exclude   []string
}

// WalkerOption configures a FileWalker.
type WalkerOption func(*FileWalker)

// WithRecursion enables or disables descending into subdirectories (default on).
func WithRecursion(recursive bool) WalkerOption {
	return func(fw *FileWalker) { fw.recursive = recursive }
}

// WithExclude adds glob patterns matched against a file's base name and its
// slash-separated path relative to the walk root.
func WithExclude(patterns ...string) WalkerOption {
	return func(fw *FileWalker) { fw.exclude = append(fw.exclude, patterns...) }
}

// NewFileWalker creates a new file walker for the given extensions (without dot).
func NewFileWalker(types []string, opts ...WalkerOption) *FileWalker {
	fw := &FileWalker{
		types:     make(map[string]bool, len(types)),
		recursive: true,
	}

	// Build type map for O(1) lookup
	for _, ext := range types {
		fw.types["."+normalizeExt(ext)] = true
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw
}

// ValidatePatterns reports the first malformed exclude pattern.
func (fw *FileWalker) ValidatePatterns() error {
	for _, p := range fw.exclude {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("exclude pattern %q: %w", p, err)
		}
	}
	return nil
}

// isValidFileType checks if a file extension is in our target types
func (fw *FileWalker) isValidFileType(p string) bool {
	return fw.types[strings.ToLower(filepath.Ext(p))]
}

func (fw *FileWalker) excluded(rel, name string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range fw.exclude {
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// FindFiles returns the documents under root. A root that is a single file
// must have a supported extension.
func (fw *FileWalker) FindFiles(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, err
	}

	if !info.IsDir() {
		if !fw.isValidFileType(root) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, root)
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			rel = p
		}

		if d.IsDir() {
			if p == root {
				return nil
			}
			if !fw.recursive || config.ShouldSkipDirectory(d.Name()) || fw.excluded(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || config.IsHiddenFile(d.Name()) {
			return nil
		}
		if fw.isValidFileType(p) && !fw.excluded(rel, d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return files, err
	}
	return files, nil
}

// Package files lists source files for the extractors.
//
// Every extractor reads through an fs.FS so the same code runs against the
// real disk (os.DirFS) and against in-memory fixture trees (fstest.MapFS).
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Predicate decides whether a file belongs in a listing.
// rel is the slash-separated path relative to the listing root.
type Predicate func(rel string) bool

// IgnoredDirs are never descended into.
var IgnoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
}

// ListFiles walks root inside fsys and returns the fs paths of all regular
// files accepted by pred, in lexical order. It has no side effects, so it can
// be called again at any time to restart a traversal.
//
// A missing root is reported as an error wrapping fs.ErrNotExist.
func ListFiles(fsys fs.FS, root string, pred Predicate) ([]string, error) {
	root = cleanRoot(root)

	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	var out []string
	err = fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			// Unreadable subtrees are skipped, not fatal
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && IgnoredDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel := relPath(root, p)
		if pred == nil || pred(rel) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// ListDirs walks root inside fsys and returns the fs paths of all directories
// below root accepted by pred, in lexical order. Ignored directories and their
// subtrees are never listed.
func ListDirs(fsys fs.FS, root string, pred Predicate) ([]string, error) {
	root = cleanRoot(root)

	if _, err := fs.Stat(fsys, root); err != nil {
		return nil, err
	}

	var out []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() || p == root {
			return nil
		}
		if IgnoredDirs[d.Name()] {
			return fs.SkipDir
		}
		if pred == nil || pred(relPath(root, p)) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// ReadString reads a whole file from fsys.
func ReadString(fsys fs.FS, p string) (string, error) {
	data, err := fs.ReadFile(fsys, cleanRoot(p))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether p exists in fsys.
func Exists(fsys fs.FS, p string) bool {
	_, err := fs.Stat(fsys, cleanRoot(p))
	return err == nil
}

// IsNotExist reports whether err means a source path is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files directly under the root for "**/" patterns
	rootGlob glob.Glob
}

// GlobPredicate builds a Predicate that accepts paths matching any pattern.
// Patterns use gobwas/glob syntax with '/' as separator ("**/*.{md,mdx}").
// A leading "**/" also matches files at the root, as users expect.
func GlobPredicate(patterns ...string) (Predicate, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if strings.HasPrefix(pattern, "**/") {
			if rg, err := glob.Compile(strings.TrimPrefix(pattern, "**/"), '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		compiled = append(compiled, cp)
	}

	return func(rel string) bool {
		for _, cp := range compiled {
			if cp.glob.Match(rel) {
				return true
			}
			if cp.rootGlob != nil && !strings.Contains(rel, "/") && cp.rootGlob.Match(rel) {
				return true
			}
		}
		return false
	}, nil
}

// MustGlob is GlobPredicate for patterns known at compile time.
func MustGlob(patterns ...string) Predicate {
	pred, err := GlobPredicate(patterns...)
	if err != nil {
		panic(err)
	}
	return pred
}

func cleanRoot(root string) string {
	root = strings.TrimPrefix(path.Clean(strings.ReplaceAll(root, "\\", "/")), "/")
	if root == "" {
		return "."
	}
	return root
}

func relPath(root, p string) string {
	if root == "." {
		return p
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
}

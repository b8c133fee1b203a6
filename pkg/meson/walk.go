package meson

import (
	"io/fs"
	"path/filepath"

	"github.com/grovetools/ninjawatch/errors"
	"github.com/moby/patternmatcher"
)

// FindSpecialFiles walks root and returns every path whose base name exactly
// matches one of names. Paths matching an exclude pattern (dockerignore
// syntax, relative to root) are skipped together with their subtrees.
// Unreadable subdirectories are skipped; an unreadable root is an error.
func FindSpecialFiles(root string, names, exclude []string) ([]string, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var matcher *patternmatcher.PatternMatcher
	if len(exclude) > 0 {
		pm, err := patternmatcher.New(exclude)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid exclude pattern")
		}
		matcher = pm
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if matcher != nil && path != root {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil {
				excluded, matchErr := matcher.MatchesOrParentMatches(rel)
				if matchErr == nil && excluded {
					if d.IsDir() {
						return fs.SkipDir
					}
					return nil
				}
			}
		}

		if !d.IsDir() && wanted[d.Name()] {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WalkFailed(root, err)
	}

	return found, nil
}

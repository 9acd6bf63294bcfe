package naming

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/fuzable/podkey/pkg/model"
)

// KeyFunc maps a file name to the key used for prefix-insensitive matching.
type KeyFunc func(name string) string

// Lister lists the regular files of a directory.
type Lister interface {
	ListFiles(dir string) ([]os.FileInfo, error)
}

// MatchStripped returns the names whose key equals target. Partial downloads never match.
func MatchStripped(names []string, target string, key KeyFunc) []string {
	var out []string
	for _, name := range names {
		if IsPartial(name) {
			continue
		}
		if key(name) == target {
			out = append(out, name)
		}
	}

	sort.Strings(out)
	return out
}

// FindByStrippedName returns the full paths of files in folder whose key equals target.
// A missing folder yields no matches.
func FindByStrippedName(lister Lister, folder string, target string, key KeyFunc) ([]string, error) {
	files, err := lister.ListFiles(folder)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to list %s", folder)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}

	matches := MatchStripped(names, target, key)
	for i, name := range matches {
		matches[i] = filepath.Join(folder, name)
	}

	return matches, nil
}

// ResolveMatch applies the zero/one/many policy to probe results: no match
// returns an empty path, exactly one returns it, more than one is ambiguous
// and returns ErrAmbiguousMatch. Callers treat ambiguity as no match.
func ResolveMatch(matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", errors.Wrapf(model.ErrAmbiguousMatch, "%d candidates: %s", len(matches), strings.Join(matches, ", "))
	}
}

// Package naming derives episode file names and matches files that carry the
// same episode under a different ordinal prefix.
package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fuzable/podkey/pkg/model"
)

// NoOrdinal disables the numeric prefix.
const NoOrdinal = -1

var (
	ordinalPrefix = regexp.MustCompile(`^(\d{3})_`)
	displayPrefix = regexp.MustCompile(`^\d{1,3}[ _]`)
)

// invalidChars mirrors the set rejected by FAT/NTFS volumes, which is what
// removable destinations are usually formatted with.
var invalidChars = func() *strings.Replacer {
	pairs := []string{
		"<", "-", ">", "-", ":", "-", "\"", "-", "/", "-",
		"\\", "-", "|", "-", "?", "-", "*", "-",
	}
	for c := 0; c < 32; c++ {
		pairs = append(pairs, string(rune(c)), "-")
	}
	return strings.NewReplacer(pairs...)
}()

// BuildFilename returns the canonical file name for an episode title.
// index >= 0 adds a zero padded "%03d_" prefix, NoOrdinal leaves it out.
// strip, when not empty, is removed from the title.
func BuildFilename(title string, index int, strip string) string {
	parts := strings.Split(title, ":")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	name := strings.Join(parts, ":")
	if strip != "" {
		name = strings.ReplaceAll(name, strip, "")
	}

	name = invalidChars.Replace(name)
	name = strings.Trim(name, "-")

	if index >= 0 {
		name = fmt.Sprintf("%03d_%s", index, name)
	}

	return name + model.DefaultExtension
}

// StripOrdinal removes a "NNN_" prefix if present.
func StripOrdinal(name string) string {
	return ordinalPrefix.ReplaceAllString(name, "")
}

// WithOrdinal replaces (or adds) the ordinal prefix of name.
func WithOrdinal(name string, ordinal int) string {
	return fmt.Sprintf("%03d_%s", ordinal, StripOrdinal(name))
}

// DisplayName turns a source file name into its on-device form. Folders with
// 2 to 99 files get a two digit prefix, and underscores become spaces.
func DisplayName(name string, total int) string {
	if total >= 2 && total <= 99 {
		if m := ordinalPrefix.FindStringSubmatch(name); m != nil && m[1][0] == '0' {
			name = name[1:]
		}
	}

	return strings.ReplaceAll(name, "_", " ")
}

// DisplayKey is the prefix-insensitive key of a destination file name. It
// accepts both the on-device form ("03 Title.mp3") and the source form
// ("003_Title.mp3") so files copied by older runs are recognised.
func DisplayKey(name string) string {
	name = displayPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "_", " ")
}

// IsPartial reports whether name is an unfinished download.
func IsPartial(name string) bool {
	return strings.HasSuffix(name, model.PartialSuffix)
}

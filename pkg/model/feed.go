package model

import (
	"strings"

	"github.com/pkg/errors"
)

// Order controls how feed items are numbered when planning downloads.
type Order string

const (
	// OrderRecent keeps the feed-native order: ordinal 1 is the newest item.
	OrderRecent = Order("Recent")
	// OrderChronological reverses the feed: ordinal 1 is the oldest remaining item.
	OrderChronological = Order("Chronological")
)

// ParseOrder accepts an order name case-insensitively. Empty input yields DefaultOrder.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultOrder, nil
	case "recent":
		return OrderRecent, nil
	case "chronological":
		return OrderChronological, nil
	default:
		return "", errors.Errorf("unsupported order %q", s)
	}
}

// Podcast is a single subscription entry. Name is both its identity and the
// name of its local and destination subfolders.
type Podcast struct {
	Name string
	URL  string
	// RetentionCount is the number of episodes to keep downloaded, 0 means unbounded
	RetentionCount int
	Order          Order
	// TitleStrip is removed from every episode title before building file names
	TitleStrip string
	// TitleExclude drops feed items whose title starts with it
	TitleExclude string
}

// UsesOrdinals reports whether episode file names carry an ordinal prefix.
// With zero or one retained episode the ordering is moot.
func (p *Podcast) UsesOrdinals() bool {
	return p.RetentionCount > 1
}

// Episode is a planned episode. It is recomputed from the live feed on every run.
type Episode struct {
	Title string
	// SourceURL is the enclosure URL, empty when the feed item has none
	SourceURL string
	LocalPath string
	// Ordinal is the 1-based position in the podcast's planned download order
	Ordinal int
}

// FileName returns the base name of the planned local path.
func (e *Episode) FileName() string {
	idx := strings.LastIndexAny(e.LocalPath, `/\`)
	return e.LocalPath[idx+1:]
}

// EpisodeSet partitions the planned episodes of one podcast.
// Every non-excluded feed item appears in exactly one of the two lists.
type EpisodeSet struct {
	Podcast    *Podcast
	ToDownload []*Episode
	ToRetire   []*Episode
}

// Len returns the total number of planned episodes.
func (s *EpisodeSet) Len() int {
	return len(s.ToDownload) + len(s.ToRetire)
}

// Group is a named subset of podcast folders selected for a copy operation.
type Group struct {
	Name     string
	Podcasts []string
}

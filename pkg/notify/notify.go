// Package notify carries progress and failure notifications out of the
// synchronize and copy engines. Components emit immutable Event values and
// never call into presentation code directly.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	SubscriptionStarted   = Kind("subscription_started")
	SubscriptionCompleted = Kind("subscription_completed")
	PodcastStarted        = Kind("podcast_started")
	PodcastSynchronized   = Kind("podcast_synchronized")
	PodcastFailed         = Kind("podcast_failed")
	EpisodeDownloading    = Kind("episode_downloading")
	EpisodeDownloaded     = Kind("episode_downloaded")
	EpisodeRenamed        = Kind("episode_renamed")
	EpisodeSynchronized   = Kind("episode_synchronized")
	EpisodeFailed         = Kind("episode_failed")
	EpisodeDeleted        = Kind("episode_deleted")
	FolderCreated         = Kind("folder_created")
	CopyStarted           = Kind("subscription_copy_started")
	CopyCompleted         = Kind("subscription_copy_completed")
	PodcastCopying        = Kind("podcast_copying")
	PodcastCopied         = Kind("podcast_copied")
	PodcastCopyFailed     = Kind("podcast_copy_failed")
	EpisodeCopying        = Kind("episode_copying")
	EpisodeCopied         = Kind("episode_copied")
	EpisodeCopyFailed     = Kind("episode_copy_failed")
	EpisodePruned         = Kind("episode_pruned")
)

// Event is a single notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind
	// Name of the podcast or episode
	Name string
	URL  string
	Path string
	// Source and Destination are set for copy and rename events
	Source      string
	Destination string
	// Index is 1-based position of the current unit within Total
	Index int
	Total int
	Count int
	// ToDownload and ToRetire are the sizes of a podcast plan
	ToDownload int
	ToRetire   int
	Elapsed    time.Duration
	Err        error
}

// Listener receives notifications.
type Listener interface {
	Notify(event Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(event Event)

func (f ListenerFunc) Notify(event Event) {
	f(event)
}

// Multi fans an event out to every listener in order.
type Multi []Listener

func (m Multi) Notify(event Event) {
	for _, l := range m {
		if l != nil {
			l.Notify(event)
		}
	}
}

// Discard drops every event.
var Discard Listener = ListenerFunc(func(Event) {})

// OrDiscard returns l, or Discard when l is nil.
func OrDiscard(l Listener) Listener {
	if l == nil {
		return Discard
	}
	return l
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Of returns the recorded events of the given kind.
func (r *Recorder) Of(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Package episode makes a podcast folder match its planned episode set.
package episode

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/naming"
	"github.com/fuzable/podkey/pkg/notify"
)

type storage interface {
	Create(ctx context.Context, path string, reader io.Reader) (int64, error)
	Rename(oldPath, newPath string) error
	Delete(ctx context.Context, path string) error
	Exists(path string) (bool, error)
	ListFiles(dir string) ([]os.FileInfo, error)
}

type Materializer struct {
	fetcher  episodeFetcher
	storage  storage
	listener notify.Listener
}

func NewMaterializer(fetcher episodeFetcher, storage storage, listener notify.Listener) *Materializer {
	return &Materializer{
		fetcher:  fetcher,
		storage:  storage,
		listener: notify.OrDiscard(listener),
	}
}

// Materialize makes sure the episode exists at its planned path. Files that
// already hold the episode under another ordinal are renamed instead of fetched,
// unless that name is the planned path of another kept episode (listed in keep).
// The returned error is set only for OutcomeFailed.
func (m *Materializer) Materialize(ctx context.Context, episode *model.Episode, keep map[string]bool) (model.Outcome, error) {
	logger := log.WithFields(log.Fields{
		"episode": episode.Title,
		"path":    episode.LocalPath,
	})

	if err := ctx.Err(); err != nil {
		return m.fail(episode, err)
	}

	exists, err := m.storage.Exists(episode.LocalPath)
	if err != nil {
		return m.fail(episode, err)
	}
	if exists {
		m.listener.Notify(notify.Event{Kind: notify.EpisodeSynchronized, Name: episode.Title, Path: episode.LocalPath})
		return model.OutcomeAlreadyPresent, nil
	}

	match, err := m.probe(episode, keep)
	if err != nil {
		return m.fail(episode, err)
	}
	if match != "" {
		if err := m.storage.Rename(match, episode.LocalPath); err != nil {
			return m.fail(episode, err)
		}

		logger.Debugf("reusing %s", match)
		m.listener.Notify(notify.Event{
			Kind:        notify.EpisodeRenamed,
			Name:        episode.Title,
			Source:      match,
			Destination: episode.LocalPath,
		})
		return model.OutcomeAlreadyPresent, nil
	}

	if episode.SourceURL == "" {
		return m.fail(episode, model.ErrNoEnclosure)
	}

	m.listener.Notify(notify.Event{Kind: notify.EpisodeDownloading, Name: episode.Title, URL: episode.SourceURL, Path: episode.LocalPath})

	written, err := m.download(ctx, episode)
	if err != nil {
		return m.fail(episode, err)
	}

	logger.Debugf("fetched %d bytes", written)
	m.listener.Notify(notify.Event{Kind: notify.EpisodeDownloaded, Name: episode.Title, Path: episode.LocalPath})
	return model.OutcomeDownloaded, nil
}

// Retire deletes the local file holding a retired episode. Paths in keep
// belong to planned downloads and are never deleted. A delete failure is
// reported as OutcomeFailed.
func (m *Materializer) Retire(ctx context.Context, episode *model.Episode, keep map[string]bool) (model.Outcome, error) {
	target := ""

	exists, err := m.storage.Exists(episode.LocalPath)
	if err != nil {
		return model.OutcomeFailed, err
	}

	if exists {
		target = episode.LocalPath
	} else {
		target, err = m.probe(episode, keep)
		if err != nil {
			return model.OutcomeFailed, err
		}
	}

	if target == "" || keep[target] {
		return model.OutcomeNotFound, nil
	}

	if err := m.storage.Delete(ctx, target); err != nil {
		err = errors.Wrapf(err, "failed to delete %s", target)
		m.listener.Notify(notify.Event{Kind: notify.EpisodeFailed, Name: episode.Title, Path: target, Err: err})
		return model.OutcomeFailed, err
	}

	m.listener.Notify(notify.Event{Kind: notify.EpisodeDeleted, Name: episode.Title, Path: target})
	return model.OutcomeDeleted, nil
}

// probe looks for a single file holding the episode under a different
// ordinal prefix. Paths in keep are current names of other episodes and never
// count as a match. Ambiguous matches are logged and ignored.
func (m *Materializer) probe(episode *model.Episode, keep map[string]bool) (string, error) {
	folder := filepath.Dir(episode.LocalPath)
	target := naming.StripOrdinal(episode.FileName())

	found, err := naming.FindByStrippedName(m.storage, folder, target, naming.StripOrdinal)
	if err != nil {
		return "", err
	}

	matches := found[:0]
	for _, path := range found {
		if !keep[path] {
			matches = append(matches, path)
		}
	}

	match, err := naming.ResolveMatch(matches)
	if err != nil {
		log.WithError(err).WithField("episode", episode.Title).Warn("ambiguous local files, ignoring them")
		return "", nil
	}

	return match, nil
}

func (m *Materializer) download(ctx context.Context, episode *model.Episode) (int64, error) {
	body, err := m.fetcher.Fetch(ctx, episode.SourceURL)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fetch episode")
	}
	defer body.Close()

	return m.storage.Create(ctx, episode.LocalPath, body)
}

func (m *Materializer) fail(episode *model.Episode, err error) (model.Outcome, error) {
	m.listener.Notify(notify.Event{
		Kind: notify.EpisodeFailed,
		Name: episode.Title,
		URL:  episode.SourceURL,
		Path: episode.LocalPath,
		Err:  err,
	})
	return model.OutcomeFailed, err
}

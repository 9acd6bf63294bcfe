package feed

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/fs"
	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/naming"
	"github.com/fuzable/podkey/pkg/notify"
)

// Planner turns a podcast feed into the set of episodes to keep and to retire.
type Planner struct {
	root     string
	fetcher  feedFetcher
	folders  fs.FolderEnsurer
	listener notify.Listener
}

type item struct {
	Title string
	URL   string
}

func NewPlanner(downloadRoot string, fetcher feedFetcher, folders fs.FolderEnsurer, listener notify.Listener) *Planner {
	return &Planner{
		root:     downloadRoot,
		fetcher:  fetcher,
		folders:  folders,
		listener: notify.OrDiscard(listener),
	}
}

// Plan fetches the podcast's feed and partitions its items. Transport and
// parse failures are returned as *model.FeedError.
func (p *Planner) Plan(ctx context.Context, podcast *model.Podcast) (*model.EpisodeSet, error) {
	logger := log.WithField("podcast", podcast.Name)

	items, err := p.fetchItems(ctx, podcast.URL)
	if err != nil {
		return nil, &model.FeedError{Podcast: podcast.Name, URL: podcast.URL, Err: err}
	}

	logger.Debugf("received %d item(s)", len(items))

	items = exclude(items, podcast.TitleExclude)
	if podcast.Order == model.OrderChronological {
		reverse(items)
	}

	folder := filepath.Join(p.root, podcast.Name)
	created, err := p.folders.EnsureFolder(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to prepare folder for %q", podcast.Name)
	}
	if created {
		p.listener.Notify(notify.Event{Kind: notify.FolderCreated, Name: podcast.Name, Path: folder})
	}

	set := &model.EpisodeSet{Podcast: podcast}
	for idx, it := range items {
		ordinal := idx + 1

		index := naming.NoOrdinal
		if podcast.UsesOrdinals() {
			index = ordinal
		}

		episode := &model.Episode{
			Title:     it.Title,
			SourceURL: it.URL,
			LocalPath: filepath.Join(folder, naming.BuildFilename(it.Title, index, podcast.TitleStrip)),
			Ordinal:   ordinal,
		}

		if podcast.RetentionCount == 0 || idx < podcast.RetentionCount {
			set.ToDownload = append(set.ToDownload, episode)
		} else {
			set.ToRetire = append(set.ToRetire, episode)
		}
	}

	logger.Debugf("planned %d of %d item(s)", set.Len(), len(items))
	return set, nil
}

func (p *Planner) fetchItems(ctx context.Context, url string) ([]item, error) {
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse feed")
	}

	items := make([]item, 0, len(parsed.Items))
	for idx, it := range parsed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return nil, errors.Errorf("item %d has no title", idx)
		}

		items = append(items, item{Title: title, URL: enclosureURL(it)})
	}

	return items, nil
}

func enclosureURL(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func exclude(items []item, prefix string) []item {
	if prefix == "" {
		return items
	}

	out := items[:0]
	for _, it := range items {
		if strings.HasPrefix(it.Title, prefix) {
			log.Debugf("excluding %q", it.Title)
			continue
		}
		out = append(out, it)
	}

	return out
}

func reverse(items []item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// Package subscription sequences the synchronize and copy phases over every
// subscribed podcast.
package subscription

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/episode"
	"github.com/fuzable/podkey/pkg/feed"
	"github.com/fuzable/podkey/pkg/fetch"
	"github.com/fuzable/podkey/pkg/fs"
	"github.com/fuzable/podkey/pkg/group"
	"github.com/fuzable/podkey/pkg/hook"
	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/notify"
	"github.com/fuzable/podkey/pkg/reconcile"
)

const (
	PhaseSync = "sync"
	PhaseCopy = "copy"
)

type Options struct {
	DownloadDir string
	// MaxSize caps the bytes a copy may transfer, 0 disables the check
	MaxSize    uint64
	AllowFixed bool
	// LockPath is the run lock file, empty disables locking
	LockPath  string
	SyncHooks []*hook.ExecHook
	CopyHooks []*hook.ExecHook
	// Volumes overrides the platform volume inspector
	Volumes group.VolumeInspector
}

type Orchestrator struct {
	opts     Options
	podcasts []*model.Podcast
	orders   map[string]model.Order
	storage  fs.Storage
	listener notify.Listener

	planner      *feed.Planner
	materializer *episode.Materializer
	selector     *group.Selector
	reconciler   *reconcile.Reconciler
}

func New(
	podcasts []*model.Podcast,
	groups []*model.Group,
	opts Options,
	fetcher fetch.Fetcher,
	storage fs.Storage,
	listener notify.Listener,
) *Orchestrator {
	listener = notify.OrDiscard(listener)

	orders := make(map[string]model.Order, len(podcasts))
	for _, p := range podcasts {
		orders[p.Name] = p.Order
	}

	selectorOpts := []group.Option{group.AllowFixed(opts.AllowFixed)}
	if opts.Volumes != nil {
		selectorOpts = append(selectorOpts, group.WithVolumeInspector(opts.Volumes))
	}

	return &Orchestrator{
		opts:         opts,
		podcasts:     podcasts,
		orders:       orders,
		storage:      storage,
		listener:     listener,
		planner:      feed.NewPlanner(opts.DownloadDir, fetcher, storage, listener),
		materializer: episode.NewMaterializer(fetcher, storage, listener),
		selector:     group.NewSelector(storage, groups, selectorOpts...),
		reconciler:   reconcile.NewReconciler(storage, listener),
	}
}

// Synchronize plans every podcast from its live feed and makes the download
// folder match. A failing podcast or episode is counted and skipped.
func (o *Orchestrator) Synchronize(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := newSummary(PhaseSync)

	created, err := o.storage.EnsureFolder(o.opts.DownloadDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare download directory")
	}
	if created {
		o.listener.Notify(notify.Event{Kind: notify.FolderCreated, Path: o.opts.DownloadDir})
	}

	unlock, err := acquire(o.opts.LockPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	total := len(o.podcasts)
	o.listener.Notify(notify.Event{Kind: notify.SubscriptionStarted, Count: total})

	for idx, podcast := range o.podcasts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Units++
		o.listener.Notify(notify.Event{
			Kind:  notify.PodcastStarted,
			Name:  podcast.Name,
			URL:   podcast.URL,
			Index: idx + 1,
			Total: total,
		})

		if err := o.synchronizePodcast(ctx, podcast, summary); err != nil {
			summary.UnitFailures++
			o.listener.Notify(notify.Event{Kind: notify.PodcastFailed, Name: podcast.Name, URL: podcast.URL, Err: err})
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(started)
	o.listener.Notify(notify.Event{Kind: notify.SubscriptionCompleted, Count: total, Elapsed: summary.Elapsed})

	summary.HookFailures = hook.RunAll(ctx, o.opts.SyncHooks, hook.Env{
		Phase:       PhaseSync,
		DownloadDir: o.opts.DownloadDir,
		Count:       summary.Episodes[model.OutcomeDownloaded],
	})

	return summary, nil
}

func (o *Orchestrator) synchronizePodcast(ctx context.Context, podcast *model.Podcast, summary *Summary) error {
	set, err := o.planner.Plan(ctx, podcast)
	if err != nil {
		return err
	}

	o.listener.Notify(notify.Event{
		Kind:       notify.PodcastSynchronized,
		Name:       podcast.Name,
		URL:        podcast.URL,
		ToDownload: len(set.ToDownload),
		ToRetire:   len(set.ToRetire),
	})

	keep := make(map[string]bool, len(set.ToDownload))
	for _, ep := range set.ToDownload {
		keep[ep.LocalPath] = true
	}

	for _, ep := range set.ToDownload {
		if ctx.Err() != nil {
			return nil
		}
		outcome, _ := o.materializer.Materialize(ctx, ep, keep)
		summary.Episodes[outcome]++
	}

	for _, ep := range set.ToRetire {
		if ctx.Err() != nil {
			return nil
		}
		outcome, _ := o.materializer.Retire(ctx, ep, keep)
		summary.Episodes[outcome]++
	}

	return nil
}

// Copy mirrors the selected podcast folders onto destination. Preconditions
// are checked before anything is touched and fail the whole operation with
// a *model.PreconditionError.
func (o *Orchestrator) Copy(ctx context.Context, groupName string, destination string) (*Summary, error) {
	started := time.Now()
	summary := newSummary(PhaseCopy)

	if err := o.selector.Preflight(o.opts.DownloadDir, destination); err != nil {
		return nil, err
	}

	unlock, err := acquire(o.opts.LockPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	folders, err := o.selector.SelectFolders(groupName, o.opts.DownloadDir)
	if err != nil {
		return nil, err
	}

	exceeds, err := o.selector.ExceedsMaxSize(folders, o.opts.MaxSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute copy size")
	}
	if exceeds {
		return nil, &model.PreconditionError{
			Reason: "selected podcasts exceed the " + humanize.Bytes(o.opts.MaxSize) + " size limit",
		}
	}

	total := len(folders)
	o.listener.Notify(notify.Event{Kind: notify.CopyStarted, Name: groupName, Destination: destination, Total: total})

	for idx, folder := range folders {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Units++
		name := filepath.Base(folder)

		o.listener.Notify(notify.Event{
			Kind:  notify.PodcastCopying,
			Name:  name,
			Path:  folder,
			Index: idx + 1,
			Total: total,
		})

		outcomes, err := o.reconciler.ReconcileFolder(ctx, folder, filepath.Join(destination, name), o.order(name))
		for _, outcome := range outcomes {
			summary.Files[outcome.Action]++
		}

		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.UnitFailures++
			o.listener.Notify(notify.Event{Kind: notify.PodcastCopyFailed, Name: name, Path: folder, Err: err})
			continue
		}

		o.listener.Notify(notify.Event{Kind: notify.PodcastCopied, Name: name, Path: folder, Count: len(outcomes)})
	}

	summary.Elapsed = time.Since(started)
	o.listener.Notify(notify.Event{Kind: notify.CopyCompleted, Count: total, Elapsed: summary.Elapsed})

	summary.HookFailures = hook.RunAll(ctx, o.opts.CopyHooks, hook.Env{
		Phase:       PhaseCopy,
		DownloadDir: o.opts.DownloadDir,
		Destination: destination,
		Count:       summary.Files[model.CopyActionCopied],
	})

	return summary, nil
}

// order returns the configured order of a podcast folder. Folders with no
// subscription entry are copied in feed order.
func (o *Orchestrator) order(name string) model.Order {
	if order, ok := o.orders[name]; ok && order != "" {
		return order
	}

	log.WithField("folder", name).Debug("no subscription entry, using default order")
	return model.DefaultOrder
}

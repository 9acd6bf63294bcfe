// Package reconcile mirrors a local podcast folder onto a destination folder.
package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/naming"
	"github.com/fuzable/podkey/pkg/notify"
)

type storage interface {
	Copy(ctx context.Context, src, dst string) (int64, error)
	Rename(oldPath, newPath string) error
	Delete(ctx context.Context, path string) error
	ListFiles(dir string) ([]os.FileInfo, error)
	EnsureFolder(path string) (bool, error)
}

// task is a single source file and where it should end up.
type task struct {
	source      string
	destination string
	// existing is a destination file holding the same episode under another name
	existing string
}

type Reconciler struct {
	storage  storage
	listener notify.Listener
}

func NewReconciler(storage storage, listener notify.Listener) *Reconciler {
	return &Reconciler{
		storage:  storage,
		listener: notify.OrDiscard(listener),
	}
}

// ReconcileFolder copies or renames every source file into destination and
// then prunes destination files that are no longer planned. Per file failures
// are reported in the outcomes and don't stop the folder. A missing source
// folder is an error and leaves destination untouched.
func (r *Reconciler) ReconcileFolder(ctx context.Context, source, destination string, order model.Order) ([]model.CopyOutcome, error) {
	logger := log.WithFields(log.Fields{
		"source":      source,
		"destination": destination,
	})

	files, err := r.sourceFiles(source)
	if err != nil {
		return nil, err
	}

	tasks, err := r.plan(files, source, destination, order)
	if err != nil {
		return nil, err
	}

	logger.Debugf("reconciling %d file(s)", len(tasks))

	outcomes := make([]model.CopyOutcome, 0, len(tasks))
	targets := make(map[string]bool, len(tasks))

	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		targets[t.destination] = true
		outcomes = append(outcomes, r.execute(ctx, t))
	}

	if err := r.prune(ctx, destination, targets); err != nil {
		return outcomes, err
	}

	return outcomes, nil
}

// sourceFiles lists finished files of folder, newest first. Equal
// modification times are ordered by name, descending.
func (r *Reconciler) sourceFiles(folder string) ([]os.FileInfo, error) {
	all, err := r.storage.ListFiles(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list source folder %s", folder)
	}

	files := make([]os.FileInfo, 0, len(all))
	for _, f := range all {
		if !naming.IsPartial(f.Name()) {
			files = append(files, f)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		ti, tj := files[i].ModTime(), files[j].ModTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return files[i].Name() > files[j].Name()
	})

	return files, nil
}

func (r *Reconciler) plan(files []os.FileInfo, source, destination string, order model.Order) ([]task, error) {
	total := len(files)
	tasks := make([]task, 0, total)
	targets := make(map[string]bool, total)

	for pos, f := range files {
		name := f.Name()
		if order == model.OrderChronological {
			// Players sort by name, so the newest file gets the highest ordinal.
			name = naming.WithOrdinal(name, total-pos)
		}
		name = naming.DisplayName(name, total)

		t := task{
			source:      filepath.Join(source, f.Name()),
			destination: filepath.Join(destination, name),
		}
		targets[t.destination] = true
		tasks = append(tasks, t)
	}

	// A destination file is reused by at most one task, and never when it is
	// another task's target.
	claimed := make(map[string]bool, total)
	for i := range tasks {
		t := &tasks[i]
		name := filepath.Base(t.destination)

		found, err := naming.FindByStrippedName(r.storage, destination, naming.DisplayKey(name), naming.DisplayKey)
		if err != nil {
			return nil, err
		}

		var matches []string
		for _, path := range found {
			if path == t.destination {
				matches = []string{path}
				break
			}
			if !targets[path] && !claimed[path] {
				matches = append(matches, path)
			}
		}

		match, err := naming.ResolveMatch(matches)
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("ambiguous destination files, copying afresh")
		}
		if match != "" {
			claimed[match] = true
		}
		t.existing = match
	}

	return tasks, nil
}

func (r *Reconciler) execute(ctx context.Context, t task) model.CopyOutcome {
	name := filepath.Base(t.destination)

	r.listener.Notify(notify.Event{Kind: notify.EpisodeCopying, Name: name, Source: t.source, Destination: t.destination})

	if t.existing != "" {
		if err := r.storage.Rename(t.existing, t.destination); err != nil {
			return r.fail(t, err)
		}

		if t.existing != t.destination {
			r.listener.Notify(notify.Event{Kind: notify.EpisodeRenamed, Name: name, Source: t.existing, Destination: t.destination})
		}
		return model.CopyOutcome{Source: t.source, Destination: t.destination, Action: model.CopyActionRenamed}
	}

	folder := filepath.Dir(t.destination)
	created, err := r.storage.EnsureFolder(folder)
	if err != nil {
		return r.fail(t, err)
	}
	if created {
		r.listener.Notify(notify.Event{Kind: notify.FolderCreated, Path: folder})
	}

	if _, err := r.storage.Copy(ctx, t.source, t.destination); err != nil {
		return r.fail(t, err)
	}

	r.listener.Notify(notify.Event{Kind: notify.EpisodeCopied, Name: name, Source: t.source, Destination: t.destination})
	return model.CopyOutcome{Source: t.source, Destination: t.destination, Action: model.CopyActionCopied}
}

func (r *Reconciler) fail(t task, err error) model.CopyOutcome {
	r.listener.Notify(notify.Event{
		Kind:        notify.EpisodeCopyFailed,
		Name:        filepath.Base(t.destination),
		Source:      t.source,
		Destination: t.destination,
		Err:         err,
	})
	return model.CopyOutcome{Source: t.source, Destination: t.destination, Action: model.CopyActionFailed, Err: err}
}

// prune deletes destination files outside targets.
func (r *Reconciler) prune(ctx context.Context, destination string, targets map[string]bool) error {
	files, err := r.storage.ListFiles(destination)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil
		}
		return errors.Wrapf(err, "failed to list destination folder %s", destination)
	}

	var result error
	for _, f := range files {
		path := filepath.Join(destination, f.Name())
		if targets[path] {
			continue
		}

		if err := r.storage.Delete(ctx, path); err != nil {
			log.WithError(err).WithField("path", path).Error("failed to prune file")
			result = multierror.Append(result, errors.Wrapf(err, "failed to prune %s", path))
			continue
		}

		r.listener.Notify(notify.Event{Kind: notify.EpisodePruned, Name: f.Name(), Path: path})
	}

	return result
}

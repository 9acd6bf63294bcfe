// Package group resolves which podcast folders take part in a copy and
// checks the copy's preconditions.
package group

import (
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
)

type folderStorage interface {
	DirExists(path string) (bool, error)
	ListFolders(dir string) ([]string, error)
	TreeSize(dir string) (int64, error)
}

type Selector struct {
	storage    folderStorage
	groups     map[string]*model.Group
	volumes    VolumeInspector
	allowFixed bool
}

type Option func(*Selector)

// WithVolumeInspector replaces the platform volume inspector.
func WithVolumeInspector(v VolumeInspector) Option {
	return func(s *Selector) {
		s.volumes = v
	}
}

// AllowFixed lets copies target non-removable volumes.
func AllowFixed(allow bool) Option {
	return func(s *Selector) {
		s.allowFixed = allow
	}
}

func NewSelector(storage folderStorage, groups []*model.Group, opts ...Option) *Selector {
	s := &Selector{
		storage: storage,
		groups:  make(map[string]*model.Group, len(groups)),
		volumes: NewVolumeInspector(),
	}

	for _, g := range groups {
		s.groups[g.Name] = g
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SelectFolders returns the podcast folders a copy touches. An empty group
// name selects every folder under root.
func (s *Selector) SelectFolders(group string, root string) ([]string, error) {
	if group == "" {
		folders, err := s.storage.ListFolders(root)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s", root)
		}
		return folders, nil
	}

	g, ok := s.groups[group]
	if !ok {
		return nil, &model.PreconditionError{
			Reason: "group " + group,
			Err:    model.ErrUnknownGroup,
		}
	}

	folders := make([]string, 0, len(g.Podcasts))
	for _, name := range g.Podcasts {
		folders = append(folders, filepath.Join(root, name))
	}

	return folders, nil
}

// TotalSize sums the size of every file under folders.
func (s *Selector) TotalSize(folders []string) (int64, error) {
	var total int64
	for _, folder := range folders {
		size, err := s.storage.TreeSize(folder)
		if err != nil {
			return 0, err
		}
		total += size
	}

	return total, nil
}

// ExceedsMaxSize reports whether folders hold more than maxBytes.
// A ceiling of 0 disables the check.
func (s *Selector) ExceedsMaxSize(folders []string, maxBytes uint64) (bool, error) {
	if maxBytes == 0 {
		return false, nil
	}

	total, err := s.TotalSize(folders)
	if err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"size":    humanize.Bytes(uint64(total)),
		"ceiling": humanize.Bytes(maxBytes),
	}).Debugf("computed size of %d folder(s)", len(folders))

	return uint64(total) > maxBytes, nil
}

// Preflight checks that both roots exist and the destination is a writable
// removable volume with free space. Failures are *model.PreconditionError.
func (s *Selector) Preflight(root, destination string) error {
	for _, dir := range []string{root, destination} {
		ok, err := s.storage.DirExists(dir)
		if err != nil {
			return &model.PreconditionError{Reason: dir + " is not accessible", Err: err}
		}
		if !ok {
			return &model.PreconditionError{Reason: dir + " does not exist"}
		}
	}

	volume, err := s.volumes.Inspect(destination)
	if err != nil {
		return &model.PreconditionError{Reason: "destination volume is not ready", Err: err}
	}

	if !volume.Writable {
		return &model.PreconditionError{Reason: destination + " is not writable"}
	}
	if volume.Free == 0 {
		return &model.PreconditionError{Reason: destination + " has no free space"}
	}
	if !volume.Removable && !s.allowFixed {
		return &model.PreconditionError{Reason: destination + " is not on a removable volume"}
	}

	log.WithFields(log.Fields{
		"destination": destination,
		"free":        humanize.Bytes(volume.Free),
		"removable":   volume.Removable,
	}).Debug("destination volume is ready")

	return nil
}

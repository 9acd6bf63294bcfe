package subscription

import (
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
)

// acquire takes the run lock. An empty path disables locking.
func acquire(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock %s", path)
	}
	if !locked {
		return nil, errors.Wrap(model.ErrRunInProgress, path)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warnf("failed to release %s", path)
		}
	}, nil
}

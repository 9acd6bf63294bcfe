package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/config"
	"github.com/fuzable/podkey/pkg/fetch"
	"github.com/fuzable/podkey/pkg/fs"
	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/notify"
	"github.com/fuzable/podkey/pkg/subscription"
)

var errPhaseFailed = errors.New("one or more items failed, see log for details")

type app struct {
	opts *Opts
}

func (a *app) loadConfig() (*config.Config, error) {
	log.Debugf("loading configuration %q", a.opts.ConfigPath)

	cfg, err := config.LoadConfig(a.opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}

	configureLogging(cfg.Log)

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}).Debug("running podkey")

	return cfg, nil
}

func (a *app) load() (*subscription.Orchestrator, *config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	fetcher := fetch.NewHTTP(fetch.Config{
		Timeout:   cfg.Sync.Timeout,
		UserAgent: cfg.Sync.UserAgent,
	})

	o := subscription.New(
		cfg.Subscription.ToPodcasts(),
		cfg.Subscription.ToGroups(),
		subscription.Options{
			DownloadDir: cfg.Storage.DownloadDir,
			MaxSize:     uint64(cfg.Copy.MaxSize),
			AllowFixed:  cfg.Copy.AllowFixed,
			LockPath:    filepath.Join(cfg.Storage.DownloadDir, model.LockFileName),
			SyncHooks:   cfg.Sync.Hooks,
			CopyHooks:   cfg.Copy.Hooks,
		},
		fetcher,
		fs.NewOS(),
		notify.NewLogListener(log.StandardLogger()),
	)

	return o, cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// report logs a phase summary and turns failures into an error.
func report(summary *subscription.Summary, err error) error {
	if summary != nil {
		summary.Log(log.StandardLogger())
	}
	if err != nil {
		return err
	}
	if summary.Failed() {
		return errPhaseFailed
	}
	return nil
}

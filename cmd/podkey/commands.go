package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fuzable/podkey/pkg/config"
	"github.com/fuzable/podkey/pkg/feed"
	"github.com/fuzable/podkey/pkg/subscription"
)

type syncCommand struct {
	app *app
}

func (c *syncCommand) Execute(args []string) error {
	o, _, err := c.app.load()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return report(o.Synchronize(ctx))
}

type copyOptions struct {
	Group       string `long:"group" short:"g" description:"copy only the podcasts of this group"`
	Destination string `long:"destination" short:"d" description:"destination root, overrides the config file"`
}

func (o copyOptions) destination(cfg *config.Config) (string, error) {
	if o.Destination != "" {
		return o.Destination, nil
	}
	if cfg.Copy.Destination != "" {
		return cfg.Copy.Destination, nil
	}
	return "", errors.New("no copy destination configured, set [copy] destination or pass --destination")
}

type copyCommand struct {
	copyOptions
	app *app
}

func (c *copyCommand) Execute(args []string) error {
	o, cfg, err := c.app.load()
	if err != nil {
		return err
	}

	dest, err := c.destination(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return report(o.Copy(ctx, c.Group, dest))
}

type runCommand struct {
	copyOptions
	app *app
}

func (c *runCommand) Execute(args []string) error {
	o, cfg, err := c.app.load()
	if err != nil {
		return err
	}

	dest, err := c.destination(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	syncErr := report(o.Synchronize(ctx))
	if syncErr != nil && syncErr != errPhaseFailed {
		return syncErr
	}

	if err := report(o.Copy(ctx, c.Group, dest)); err != nil {
		return err
	}

	return syncErr
}

type watchCommand struct {
	app *app
}

func (c *watchCommand) Execute(args []string) error {
	o, cfg, err := c.app.load()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return watch(ctx, o, cfg.Sync.Schedule)
}

// watch synchronizes once, then on schedule until ctx is canceled.
func watch(ctx context.Context, o *subscription.Orchestrator, schedule string) error {
	group, ctx := errgroup.WithContext(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.VerbosePrintfLogger(log.StandardLogger()))))

	update := func() {
		if err := report(o.Synchronize(ctx)); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("scheduled sync failed")
		}
	}

	if _, err := c.AddFunc(schedule, update); err != nil {
		return errors.Wrapf(err, "can't create cron task for schedule %q", schedule)
	}

	group.Go(func() error {
		defer func() {
			log.Info("shutting down cron")
			<-c.Stop().Done()
		}()

		// Perform initial sync after start
		update()

		c.Start()
		log.Infof("next sync scheduled with %q", schedule)

		<-ctx.Done()
		return ctx.Err()
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}

	log.Info("gracefully stopped")
	return nil
}

type opmlCommand struct {
	Output string `long:"output" short:"o" description:"write to this file instead of stdout"`
	Title  string `long:"title" default:"Podkey subscription" description:"OPML document title"`
	app    *app
}

func (c *opmlCommand) Execute(args []string) error {
	cfg, err := c.app.loadConfig()
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return errors.Wrap(err, "failed to create opml file")
		}
		defer f.Close()
		out = f
	}

	return writeOPML(out, cfg, c.Title)
}

func writeOPML(w io.Writer, cfg *config.Config, title string) error {
	doc, err := feed.BuildOPML(cfg.Subscription.ToPodcasts(), title)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, doc+"\n"); err != nil {
		return errors.Wrap(err, "failed to write opml")
	}
	return nil
}

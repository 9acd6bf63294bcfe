package main

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fuzable/podkey/pkg/config"
)

type Opts struct {
	ConfigPath string `long:"config" short:"c" default:"podkey.toml" env:"PODKEY_CONFIG_PATH" description:"path to the TOML config file"`
	Debug      bool   `long:"debug" description:"enable debug logging"`
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
	})

	opts := Opts{}
	parser := newParser(&opts)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Stdout.WriteString(flagsErr.Message + "\n")
			return
		}

		log.WithError(err).Error("podkey failed")
		os.Exit(1)
	}
}

func newParser(opts *Opts) *flags.Parser {
	app := &app{opts: opts}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}
		if opts.Debug {
			log.SetLevel(log.DebugLevel)
		}
		return command.Execute(args)
	}

	mustAdd(parser, "sync", "Download new episodes", "Fetches every subscribed feed and makes the download folder match.", &syncCommand{app: app})
	mustAdd(parser, "copy", "Copy podcasts to a removable volume", "Mirrors podcast folders onto the destination volume.", &copyCommand{app: app})
	mustAdd(parser, "run", "Synchronize then copy", "Runs sync followed by copy.", &runCommand{app: app})
	mustAdd(parser, "watch", "Synchronize on a schedule", "Runs sync now and then on the configured schedule until interrupted.", &watchCommand{app: app})
	mustAdd(parser, "opml", "Export the subscription as OPML", "Writes the subscribed feeds as an OPML document.", &opmlCommand{app: app})

	return parser
}

func mustAdd(parser *flags.Parser, name, short, long string, data interface{}) {
	if _, err := parser.AddCommand(name, short, long, data); err != nil {
		log.WithError(err).Fatalf("failed to register %q command", name)
	}
}

// configureLogging routes the log to a rotated file when one is configured.
func configureLogging(cfg config.Log) {
	if cfg.Filename == "" {
		return
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   true,
	})
}

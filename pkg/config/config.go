// Package config loads the application TOML config and the XML subscription list.
package config

import (
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/fuzable/podkey/pkg/hook"
	"github.com/fuzable/podkey/pkg/model"
)

type Config struct {
	// Subscriptions is the path to the XML subscription list, relative to the config file
	Subscriptions string `toml:"subscriptions"`
	// Storage configures where podcasts are downloaded to
	Storage Storage `toml:"storage"`
	// Sync configures the synchronize phase
	Sync Sync `toml:"sync"`
	// Copy configures the copy phase
	Copy Copy `toml:"copy"`
	// Log is the optional logging configuration
	Log Log `toml:"log"`

	// Subscription is loaded from Subscriptions by LoadConfig
	Subscription *Subscription `toml:"-"`
}

type Storage struct {
	// DownloadDir holds one folder per podcast
	DownloadDir string `toml:"download_dir"`
}

type Sync struct {
	// Timeout limits a single HTTP request, including the body transfer
	Timeout time.Duration `toml:"timeout"`
	// UserAgent is sent with every request
	UserAgent string `toml:"user_agent"`
	// Schedule is a cron expression used by watch mode
	Schedule string `toml:"schedule"`
	// Hooks run after every synchronize
	Hooks []*hook.ExecHook `toml:"hooks"`
}

type Copy struct {
	// Destination is the root folder on the removable volume
	Destination string `toml:"destination"`
	// MaxSize is the most a copy may transfer, 0 disables the check
	MaxSize ByteSize `toml:"max_size"`
	// AllowFixed permits destinations on non-removable volumes
	AllowFixed bool `toml:"allow_fixed"`
	// Hooks run after every copy
	Hooks []*hook.ExecHook `toml:"hooks"`
}

type Log struct {
	// Filename to write the log to (instead of stdout)
	Filename string `toml:"filename"`
	// MaxSize is the maximum size of the log file in MB
	MaxSize int `toml:"max_size"`
	// MaxBackups is the maximum number of log file backups to keep after rotation
	MaxBackups int `toml:"max_backups"`
	// MaxAge is the maximum number of days to keep the logs for
	MaxAge int `toml:"max_age"`
	// Compress old backups
	Compress bool `toml:"compress"`
}

// LoadConfig loads TOML configuration from a file path, then the subscription list it points to.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	config := Config{}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal toml")
	}

	config.applyDefaults(path)

	if err := config.validate(); err != nil {
		return nil, err
	}

	sub, err := LoadSubscription(config.Subscriptions)
	if err != nil {
		return nil, err
	}
	config.Subscription = sub

	return &config, nil
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.Storage.DownloadDir == "" {
		result = multierror.Append(result, errors.New("download directory is required"))
	}

	if c.Sync.Timeout < 0 {
		result = multierror.Append(result, errors.New("sync timeout can't be negative"))
	}

	if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "invalid sync schedule %q", c.Sync.Schedule))
	}

	for i, h := range append(append([]*hook.ExecHook{}, c.Sync.Hooks...), c.Copy.Hooks...) {
		if h == nil || len(h.Command) == 0 {
			result = multierror.Append(result, errors.Errorf("hook %d has no command", i+1))
		}
	}

	return result.ErrorOrNil()
}

func (c *Config) applyDefaults(configPath string) {
	if c.Subscriptions == "" {
		c.Subscriptions = model.DefaultSubscriptionFile
	}
	if !filepath.IsAbs(c.Subscriptions) {
		c.Subscriptions = filepath.Join(filepath.Dir(configPath), c.Subscriptions)
	}

	if c.Sync.Timeout == 0 {
		c.Sync.Timeout = model.DefaultFetchTimeout
	}
	if c.Sync.UserAgent == "" {
		c.Sync.UserAgent = model.DefaultUserAgent
	}
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = model.DefaultSchedule
	}

	if c.Log.Filename != "" {
		if c.Log.MaxSize == 0 {
			c.Log.MaxSize = model.DefaultLogMaxSize
		}
		if c.Log.MaxAge == 0 {
			c.Log.MaxAge = model.DefaultLogMaxAge
		}
		if c.Log.MaxBackups == 0 {
			c.Log.MaxBackups = model.DefaultLogMaxBackups
		}
	}
}

// Package hook runs user commands after a phase completes.
package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
)

// Environment variables passed to hooks.
const (
	EnvPhase       = "PODKEY_PHASE"
	EnvDownloadDir = "PODKEY_DOWNLOAD_DIR"
	EnvDestination = "PODKEY_DESTINATION"
	EnvCount       = "PODKEY_COUNT"
)

// ExecHook represents a single hook configuration
type ExecHook struct {
	Command []string `toml:"command"`
	Timeout int      `toml:"timeout"` // timeout in seconds, 0 means use default (60s)
}

// Invoke runs a hook with the provided environment variables
func (h *ExecHook) Invoke(ctx context.Context, env []string) error {
	if h == nil {
		return nil
	}
	if len(h.Command) == 0 {
		return errors.New("hook command is empty")
	}

	timeout := model.DefaultHookTimeout
	if h.Timeout > 0 {
		timeout = time.Duration(h.Timeout) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if len(h.Command) == 1 {
		// Single string, let the shell split it
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", h.Command[0])
	} else {
		cmd = exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	}

	cmd.Env = append(os.Environ(), env...)

	data, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "hook execution failed, output: %s", string(data))
	}

	log.Debugf("hook output: %s", string(data))
	return nil
}

// Env describes a finished phase to hooks.
type Env struct {
	Phase       string
	DownloadDir string
	Destination string
	Count       int
}

func (e Env) List() []string {
	return []string{
		EnvPhase + "=" + e.Phase,
		EnvDownloadDir + "=" + e.DownloadDir,
		EnvDestination + "=" + e.Destination,
		fmt.Sprintf("%s=%d", EnvCount, e.Count),
	}
}

// RunAll invokes hooks in order. Failures are logged and don't stop the
// remaining hooks; the number of failed hooks is returned.
func RunAll(ctx context.Context, hooks []*ExecHook, env Env) int {
	failed := 0
	for i, h := range hooks {
		if h == nil {
			continue
		}

		logger := log.WithFields(log.Fields{"phase": env.Phase, "hook": i + 1})
		logger.Debugf("running hook %v", h.Command)

		if err := h.Invoke(ctx, env.List()); err != nil {
			logger.WithError(err).Error("hook failed")
			failed++
		}
	}
	return failed
}

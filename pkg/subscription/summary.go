package subscription

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
)

// Summary counts what a phase did.
type Summary struct {
	Phase string
	// Units is the number of podcasts (sync) or folders (copy) processed
	Units int
	// UnitFailures counts podcasts whose feed failed or folders that could not be reconciled
	UnitFailures int
	Episodes     map[model.Outcome]int
	Files        map[model.CopyAction]int
	// HookFailures is informational, hooks never fail a phase
	HookFailures int
	Elapsed      time.Duration
}

func newSummary(phase string) *Summary {
	return &Summary{
		Phase:    phase,
		Episodes: map[model.Outcome]int{},
		Files:    map[model.CopyAction]int{},
	}
}

// Failed reports whether any unit, episode or file failed.
func (s *Summary) Failed() bool {
	return s.UnitFailures > 0 || s.Episodes[model.OutcomeFailed] > 0 || s.Files[model.CopyActionFailed] > 0
}

// Log writes the summary as a single structured line.
func (s *Summary) Log(logger log.FieldLogger) {
	fields := log.Fields{
		"phase":   s.Phase,
		"units":   s.Units,
		"failed":  s.UnitFailures,
		"elapsed": s.Elapsed.Round(time.Millisecond),
	}
	for k, v := range s.Episodes {
		fields[string(k)] = v
	}
	for k, v := range s.Files {
		fields[string(k)] = v
	}
	if s.HookFailures > 0 {
		fields["hook_failures"] = s.HookFailures
	}

	entry := logger.WithFields(fields)
	if s.Failed() {
		entry.Warnf("%s finished with failures", s.Phase)
		return
	}
	entry.Infof("%s finished", s.Phase)
}

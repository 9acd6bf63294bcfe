package subscription

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzable/podkey/pkg/model"
)

func TestSummary_Failed(t *testing.T) {
	s := newSummary(PhaseSync)
	assert.False(t, s.Failed())

	s.Episodes[model.OutcomeDownloaded] = 3
	s.HookFailures = 2
	assert.False(t, s.Failed())

	s.Episodes[model.OutcomeFailed] = 1
	assert.True(t, s.Failed())

	c := newSummary(PhaseCopy)
	c.Files[model.CopyActionFailed] = 1
	assert.True(t, c.Failed())
}

func TestSummary_Log(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s := newSummary(PhaseCopy)
	s.Units = 2
	s.Files[model.CopyActionCopied] = 4
	s.Log(logger)

	s.UnitFailures = 1
	s.Log(logger)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, log.InfoLevel, entries[0].Level)
	assert.Equal(t, 4, entries[0].Data["copied"])
	assert.Equal(t, "copy finished", entries[0].Message)
	assert.Equal(t, log.WarnLevel, entries[1].Level)
}

package notify

import (
	log "github.com/sirupsen/logrus"
)

// LogListener renders events as structured log lines.
type LogListener struct {
	logger log.FieldLogger
}

func NewLogListener(logger log.FieldLogger) *LogListener {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogListener{logger: logger}
}

func (l *LogListener) Notify(e Event) {
	logger := l.logger.WithField("event", string(e.Kind))
	if e.Err != nil {
		logger = logger.WithError(e.Err)
	}

	switch e.Kind {
	case SubscriptionStarted:
		logger.Infof("subscribed to %d podcast(s)", e.Count)
	case SubscriptionCompleted:
		logger.Infof("subscription with %d podcast(s) synchronized in %s", e.Count, e.Elapsed)
	case PodcastStarted:
		logger.WithField("url", e.URL).Infof("-> [%d/%d] opening podcast %q", e.Index, e.Total, e.Name)
	case PodcastSynchronized:
		logger.WithFields(log.Fields{
			"podcast":  e.Name,
			"download": e.ToDownload,
			"retire":   e.ToRetire,
		}).Infof("planned %d episode(s) to keep and %d to retire", e.ToDownload, e.ToRetire)
	case PodcastFailed:
		logger.WithField("url", e.URL).Errorf("failed to process podcast %q", e.Name)
	case EpisodeDownloading:
		logger.WithField("url", e.URL).Infof("! downloading %q", e.Name)
	case EpisodeDownloaded:
		logger.WithField("path", e.Path).Infof("downloaded %q", e.Name)
	case EpisodeRenamed:
		logger.WithFields(log.Fields{"from": e.Source, "to": e.Destination}).Infof("renamed %q", e.Name)
	case EpisodeSynchronized:
		logger.WithField("path", e.Path).Debugf("%q already present", e.Name)
	case EpisodeFailed:
		logger.WithFields(log.Fields{"url": e.URL, "path": e.Path}).Errorf("failed to download %q", e.Name)
	case EpisodeDeleted:
		logger.WithField("path", e.Path).Infof("deleted %q", e.Name)
	case FolderCreated:
		logger.Infof("created folder %s", e.Path)
	case CopyStarted:
		logger.Infof("copying %d podcast folder(s)", e.Total)
	case CopyCompleted:
		logger.Infof("copied %d podcast folder(s) in %s", e.Count, e.Elapsed)
	case PodcastCopying:
		logger.WithField("path", e.Path).Infof("-> [%d/%d] copying podcast %q", e.Index, e.Total, e.Name)
	case PodcastCopied:
		logger.Infof("podcast %q copied, %d file(s)", e.Name, e.Count)
	case PodcastCopyFailed:
		logger.WithField("path", e.Path).Errorf("failed to copy podcast %q", e.Name)
	case EpisodeCopying:
		logger.WithFields(log.Fields{"from": e.Source, "to": e.Destination}).Debug("copying episode")
	case EpisodeCopied:
		logger.WithFields(log.Fields{"from": e.Source, "to": e.Destination}).Infof("copied %q", e.Name)
	case EpisodeCopyFailed:
		logger.WithFields(log.Fields{"from": e.Source, "to": e.Destination}).Errorf("failed to copy %q", e.Name)
	case EpisodePruned:
		logger.WithField("path", e.Path).Infof("pruned %q", e.Name)
	default:
		logger.Debugf("%+v", e)
	}
}

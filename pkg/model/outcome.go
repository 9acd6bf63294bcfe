package model

// Outcome is the result of materializing or retiring a single episode.
type Outcome string

const (
	OutcomeAlreadyPresent = Outcome("already_present")
	OutcomeDownloaded     = Outcome("downloaded")
	OutcomeFailed         = Outcome("failed")
	OutcomeDeleted        = Outcome("deleted")
	OutcomeNotFound       = Outcome("not_found")
)

// CopyAction describes what reconciliation did with one source file.
type CopyAction string

const (
	CopyActionCopied  = CopyAction("copied")
	CopyActionRenamed = CopyAction("renamed")
	CopyActionFailed  = CopyAction("failed")
)

// CopyOutcome is the per-file result of reconciling a destination folder.
type CopyOutcome struct {
	Source      string
	Destination string
	Action      CopyAction
	Err         error
}

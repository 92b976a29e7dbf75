package vcs

import "fmt"

// CommitStatus is the outcome of a build reported on
// a commit.
type CommitStatus int

// Commit statuses.
const (
	StatusPending CommitStatus = iota
	StatusSuccessful
	StatusFailed
)

// String returns the lower-case status name.
func (s CommitStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccessful:
		return "successful"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("CommitStatus(%d)", int(s))
	}
}

// Finished reports whether the status ends a build.
func (s CommitStatus) Finished() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// ParseCommitStatus maps a status name onto a
// CommitStatus. Both the lower-case names and the
// upper-case provider labels are accepted.
func ParseCommitStatus(raw string) (CommitStatus, error) {
	switch raw {
	case "pending", "INPROGRESS", "in_progress":
		return StatusPending, nil
	case "successful", "SUCCESSFUL", "success":
		return StatusSuccessful, nil
	case "failed", "FAILED", "failure":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf(
			"parsing commit status: unknown status %q",
			raw,
		)
	}
}

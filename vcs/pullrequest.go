package vcs

import (
	"strings"

	"github.com/byte4ever/vcs_utils/vcs/timestamp"
)

// State is the lifecycle state of a pull request.
type State string

// Pull request states.
const (
	StateUnknown  State = ""
	StateOpen     State = "open"
	StateMerged   State = "merged"
	StateDeclined State = "declined"
)

// ParseState maps a provider state label onto a State.
// Labels are matched case-insensitively; superseded
// pull requests were closed without merging and count
// as declined.
func ParseState(raw string) State {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OPEN":
		return StateOpen
	case "MERGED", "FULFILLED":
		return StateMerged
	case "DECLINED", "REJECTED", "SUPERSEDED":
		return StateDeclined
	default:
		return StateUnknown
	}
}

// Branch is a named branch.
type Branch struct {
	Name string
}

// Commit is a commit identified by its hash.
type Commit struct {
	Hash string
}

// PullRequestTarget is one side (source or
// destination) of a pull request.
//
// Some providers send nested branch and commit
// objects, others only a display id and the latest
// commit hash. Branch and Commit prefer the nested
// object and fall back to the raw strings.
type PullRequestTarget struct {
	BranchRef    *Branch
	CommitRef    *Commit
	DisplayID    string
	LatestCommit string
}

// Branch returns the target branch.
func (t PullRequestTarget) Branch() Branch {
	if t.BranchRef != nil {
		return *t.BranchRef
	}

	return Branch{Name: t.DisplayID}
}

// Commit returns the target head commit.
func (t PullRequestTarget) Commit() Commit {
	if t.CommitRef != nil {
		return *t.CommitRef
	}

	return Commit{Hash: t.LatestCommit}
}

// PullRequest is a provider-independent pull request.
type PullRequest struct {
	ID          int
	Title       string
	Description string
	State       State
	Source      PullRequestTarget
	Destination PullRequestTarget
	CreatedAt   timestamp.Timestamp
	UpdatedAt   timestamp.Timestamp
}

// PullRequests is the ordered, read-only result of a
// single listing call.
type PullRequests struct {
	items []PullRequest
}

// NewPullRequests copies items into a PullRequests in
// the given order.
func NewPullRequests(items ...PullRequest) PullRequests {
	if len(items) == 0 {
		return PullRequests{}
	}

	cp := make([]PullRequest, len(items))
	copy(cp, items)

	return PullRequests{items: cp}
}

// Len returns the number of pull requests.
func (p PullRequests) Len() int {
	return len(p.items)
}

// At returns the i-th pull request.
func (p PullRequests) At(i int) PullRequest {
	return p.items[i]
}

// All returns a copy of the pull requests.
func (p PullRequests) All() []PullRequest {
	cp := make([]PullRequest, len(p.items))
	copy(cp, p.items)

	return cp
}

// Comment is a pull request comment. Version is the
// optimistic concurrency token some providers require
// to delete the comment; nil when none was sent.
type Comment struct {
	ID        int64
	Text      string
	Version   *int
	CreatedAt timestamp.Timestamp
	UpdatedAt timestamp.Timestamp
}

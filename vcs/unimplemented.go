package vcs

import (
	"context"
	"fmt"
)

// Unimplemented can be embedded in a provider to
// declare the status and approval operations as not
// supported by its platform. Every method returns
// ErrUnsupportedOperation.
type Unimplemented struct {
	// Platform names the provider in error messages.
	Platform string
}

func (u Unimplemented) unsupported(op string) error {
	return fmt.Errorf(
		"%s: %s: %w", u.Platform, op, ErrUnsupportedOperation,
	)
}

// UpdateStatus returns ErrUnsupportedOperation.
func (u Unimplemented) UpdateStatus(
	_ context.Context,
	_ string,
	_ string,
	_ CommitStatus,
	_ string,
	_ BuildContext,
) error {
	return u.unsupported("update status")
}

// ApprovePullRequest returns ErrUnsupportedOperation.
func (u Unimplemented) ApprovePullRequest(
	_ context.Context,
	_ int,
) error {
	return u.unsupported("approve pull request")
}

// ApprovePullRequestWithStatus returns
// ErrUnsupportedOperation.
func (u Unimplemented) ApprovePullRequestWithStatus(
	_ context.Context,
	_ int,
	_ string,
) error {
	return u.unsupported("approve pull request")
}

// DeletePullRequestApproval returns
// ErrUnsupportedOperation.
func (u Unimplemented) DeletePullRequestApproval(
	_ context.Context,
	_ int,
) error {
	return u.unsupported("delete pull request approval")
}

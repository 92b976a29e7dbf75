package vcs

import (
	"context"
	"fmt"
)

// FindPullRequestForBranch returns the first pull
// request in prs whose source branch is branch, or
// nil.
func FindPullRequestForBranch(
	branch string,
	prs PullRequests,
) *PullRequest {
	for i := range prs.items {
		if prs.items[i].Source.Branch().Name == branch {
			pr := prs.items[i]

			return &pr
		}
	}

	return nil
}

// Lister is the listing half of a Provider.
type Lister interface {
	OpenPullRequests(ctx context.Context) (PullRequests, error)
	MergedPullRequests(ctx context.Context) (PullRequests, error)
}

// ResolveBranch looks for the pull request of branch
// among the open pull requests first and, when none
// matches, among the merged ones. The merged listing
// is only requested when needed. Returns nil, nil
// when the branch has no pull request.
func ResolveBranch(
	ctx context.Context,
	l Lister,
	branch string,
) (*PullRequest, error) {
	const errCtx = "resolving pull request for branch"

	open, err := l.OpenPullRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf(
			"%s %q: open: %w", errCtx, branch, err,
		)
	}

	if pr := FindPullRequestForBranch(branch, open); pr != nil {
		return pr, nil
	}

	merged, err := l.MergedPullRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf(
			"%s %q: merged: %w", errCtx, branch, err,
		)
	}

	return FindPullRequestForBranch(branch, merged), nil
}

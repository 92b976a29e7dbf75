package vcs

import "context"

// Pattern: Strategy -- swap hosting platform without
// changing the build reporting logic.

// Provider performs pull request operations against a
// single repository on a git hosting platform. The
// repository and credentials are fixed when the
// provider is created.
type Provider interface {
	// OpenPullRequests lists open pull requests in
	// provider response order.
	OpenPullRequests(ctx context.Context) (PullRequests, error)

	// MergedPullRequests lists merged pull requests
	// in provider response order.
	MergedPullRequests(ctx context.Context) (PullRequests, error)

	// PullRequestForBranch returns the pull request
	// whose source branch is branch, or nil when
	// there is none.
	PullRequestForBranch(
		ctx context.Context,
		branch string,
	) (*PullRequest, error)

	// PostComment adds a comment to a pull request.
	PostComment(
		ctx context.Context,
		prID int,
		text string,
	) (*Comment, error)

	// DeleteComment removes a comment. Deleting a
	// comment that no longer exists is not an error
	// for providers that look the comment up first.
	DeleteComment(
		ctx context.Context,
		prID int,
		commentID int64,
	) error

	// UpdateStatus reports the build status of a
	// commit.
	UpdateStatus(
		ctx context.Context,
		commitHash string,
		message string,
		status CommitStatus,
		targetURL string,
		build BuildContext,
	) error

	// ApprovePullRequest approves a pull request as
	// the configured user.
	ApprovePullRequest(ctx context.Context, prID int) error

	// ApprovePullRequestWithStatus approves a pull
	// request. The status label is accepted for
	// compatibility and does not change the request.
	ApprovePullRequestWithStatus(
		ctx context.Context,
		prID int,
		status string,
	) error

	// DeletePullRequestApproval withdraws the
	// configured user's approval.
	DeletePullRequestApproval(
		ctx context.Context,
		prID int,
	) error
}

// Coordinate identifies a repository on a hosting
// platform. Owner is the workspace or user on
// Bitbucket Cloud and the project key on Stash.
type Coordinate struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (c Coordinate) String() string {
	return c.Owner + "/" + c.Name
}

// Credential is a principal and secret pair.
type Credential struct {
	Username string
	Password string
}

// IsZero reports whether no secret is set.
func (c Credential) IsZero() bool {
	return c.Password == ""
}

// TokenUsername is the synthetic principal used when an
// access token is presented in place of a password.
const TokenUsername = "noname"

// TokenCredential wraps an access token as a
// credential under the synthetic TokenUsername.
func TokenCredential(token string) Credential {
	return Credential{
		Username: TokenUsername,
		Password: token,
	}
}

// BuildContext describes the running build a commit
// status is reported for.
type BuildContext interface {
	BuildTypeID() string
	BuildTypeName() string
	BuildID() string
	FullName() string
}

// Build is a plain BuildContext.
type Build struct {
	TypeID   string
	TypeName string
	ID       string
	Name     string
}

// BuildTypeID returns the build configuration id.
func (b Build) BuildTypeID() string { return b.TypeID }

// BuildTypeName returns the build configuration name.
func (b Build) BuildTypeName() string { return b.TypeName }

// BuildID returns the id of this build run.
func (b Build) BuildID() string { return b.ID }

// FullName returns the human readable build name.
func (b Build) FullName() string { return b.Name }

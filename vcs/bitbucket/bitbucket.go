package bitbucket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/httpapi"
)

// Compile-time interface satisfaction check.
var _ vcs.Provider = (*Provider)(nil)

// Config holds the settings needed to create a
// Bitbucket Cloud provider.
type Config struct {
	// BaseURL is the API root. Defaults to
	// DefaultBaseURL.
	BaseURL string
	// Owner is the workspace or user owning the
	// repository.
	Owner string
	// Repo is the repository slug.
	Repo string
	// User is the Bitbucket username.
	User string
	// Password is the Bitbucket password or app
	// password.
	Password string
	// AuthToken is an optional access token. When set
	// it is sent as a bearer identity instead of the
	// user and password.
	AuthToken string
	// Executor sends the requests. A default executor
	// is used when nil.
	Executor *httpapi.Executor
}

// Provider talks to one Bitbucket Cloud repository.
//
// Pattern: Strategy -- implements vcs.Provider.
type Provider struct {
	exec  *httpapi.Executor
	paths Paths
	repo  vcs.Coordinate
	auth  httpapi.Auth
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating bitbucket provider"

	if cfg.Owner == "" {
		return nil, fmt.Errorf(
			"%s: owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.AuthToken == "" &&
		(cfg.User == "" || cfg.Password == "") {
		return nil, fmt.Errorf(
			"%s: user and password or auth token must be set",
			errCtx,
		)
	}

	ex := cfg.Executor
	if ex == nil {
		ex = httpapi.NewExecutor(httpapi.Config{})
	}

	return &Provider{
		exec:  ex,
		paths: NewPaths(cfg.BaseURL),
		repo: vcs.Coordinate{
			Owner: cfg.Owner,
			Name:  cfg.Repo,
		},
		auth: httpapi.Auth{
			Credential: vcs.Credential{
				Username: cfg.User,
				Password: cfg.Password,
			},
			Token: vcs.TokenCredential(cfg.AuthToken).Password,
		},
	}, nil
}

// Repository returns the repository coordinate.
func (p *Provider) Repository() vcs.Coordinate {
	return p.repo
}

// OpenPullRequests lists the open pull requests.
func (p *Provider) OpenPullRequests(
	ctx context.Context,
) (vcs.PullRequests, error) {
	return p.listPullRequests(
		ctx,
		"listing open bitbucket pull requests",
		p.paths.OpenPullRequests(p.repo),
	)
}

// MergedPullRequests lists the merged pull requests.
func (p *Provider) MergedPullRequests(
	ctx context.Context,
) (vcs.PullRequests, error) {
	return p.listPullRequests(
		ctx,
		"listing merged bitbucket pull requests",
		p.paths.MergedPullRequests(p.repo),
	)
}

func (p *Provider) listPullRequests(
	ctx context.Context,
	errCtx string,
	requestURL string,
) (vcs.PullRequests, error) {
	page, err := httpapi.ExecuteAndDecode[pullRequestPage](
		ctx,
		p.exec,
		httpapi.NewRequest(http.MethodGet, requestURL),
		p.auth,
	)
	if err != nil {
		return vcs.PullRequests{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return page.toDomain(), nil
}

// PullRequestForBranch returns the open, or failing
// that merged, pull request of branch. Returns nil when
// there is none.
func (p *Provider) PullRequestForBranch(
	ctx context.Context,
	branch string,
) (*vcs.PullRequest, error) {
	return vcs.ResolveBranch(ctx, p, branch)
}

// PostComment adds a comment to a pull request.
func (p *Provider) PostComment(
	ctx context.Context,
	prID int,
	text string,
) (*vcs.Comment, error) {
	const errCtx = "posting bitbucket comment"

	req := httpapi.NewFormRequest(
		http.MethodPost,
		p.paths.AddComment(p.repo, prID),
		url.Values{"content": {text}},
	)

	c, err := httpapi.ExecuteAndDecode[comment](
		ctx, p.exec, req, p.auth,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s on #%d: %w", errCtx, prID, err,
		)
	}

	return c.toDomain(), nil
}

// DeleteComment removes a comment. Bitbucket Cloud
// needs no version so the comment is deleted directly.
func (p *Provider) DeleteComment(
	ctx context.Context,
	prID int,
	commentID int64,
) error {
	const errCtx = "deleting bitbucket comment"

	if _, err := p.exec.Send(
		ctx,
		httpapi.NewRequest(
			http.MethodDelete,
			p.paths.Comment(p.repo, prID, commentID),
		),
		p.auth,
	); err != nil {
		return fmt.Errorf(
			"%s %d on #%d: %w", errCtx, commentID, prID, err,
		)
	}

	return nil
}

// UpdateStatus reports the build status of a commit.
// The status key is the build type id.
func (p *Provider) UpdateStatus(
	ctx context.Context,
	commitHash string,
	message string,
	status vcs.CommitStatus,
	targetURL string,
	build vcs.BuildContext,
) error {
	const errCtx = "updating bitbucket commit status"

	payload, err := newCommitStatus(
		status, build, message, targetURL,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	req, err := httpapi.NewJSONRequest(
		http.MethodPost,
		p.paths.UpdateStatus(p.repo, commitHash),
		payload,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := p.exec.Send(ctx, req, p.auth); err != nil {
		return fmt.Errorf(
			"%s %s: %w", errCtx, commitHash, err,
		)
	}

	return nil
}

// ApprovePullRequest approves a pull request.
func (p *Provider) ApprovePullRequest(
	ctx context.Context,
	prID int,
) error {
	const errCtx = "approving bitbucket pull request"

	if _, err := p.exec.Send(
		ctx,
		httpapi.NewRequest(
			http.MethodPost, p.paths.Approve(p.repo, prID),
		),
		p.auth,
	); err != nil {
		return fmt.Errorf("%s #%d: %w", errCtx, prID, err)
	}

	return nil
}

// ApprovePullRequestWithStatus approves a pull request.
// Bitbucket Cloud has no approval status so status is
// ignored.
func (p *Provider) ApprovePullRequestWithStatus(
	ctx context.Context,
	prID int,
	status string,
) error {
	slog.Debug(
		"ignoring approval status",
		"pr", prID,
		"status", status,
	)

	return p.ApprovePullRequest(ctx, prID)
}

// DeletePullRequestApproval withdraws the approval of
// the authenticated user.
func (p *Provider) DeletePullRequestApproval(
	ctx context.Context,
	prID int,
) error {
	const errCtx = "removing bitbucket approval"

	if _, err := p.exec.Send(
		ctx,
		httpapi.NewRequest(
			http.MethodDelete, p.paths.Approve(p.repo, prID),
		),
		p.auth,
	); err != nil {
		return fmt.Errorf("%s #%d: %w", errCtx, prID, err)
	}

	return nil
}

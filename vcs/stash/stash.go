package stash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/httpapi"
)

// Compile-time interface satisfaction check.
var _ vcs.Provider = (*Provider)(nil)

// errNoVersion is returned when a looked up comment
// carries no version to delete it with.
var errNoVersion = errors.New("comment has no version")

// Config holds the settings needed to create a Stash
// provider.
type Config struct {
	// BaseURL is the server root (e.g.
	// "https://stash.example.com").
	BaseURL string
	// Project is the project key owning the
	// repository.
	Project string
	// Repo is the repository slug.
	Repo string
	// User is the Stash username. Approvals are made
	// as this user.
	User string
	// Password is the Stash password (or personal
	// access token).
	Password string
	// Executor sends the requests. A default executor
	// is used when nil.
	Executor *httpapi.Executor
}

// Provider talks to one Stash repository.
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
	const errCtx = "creating stash provider"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf(
			"%s: base url must be set", errCtx,
		)
	}

	if cfg.Project == "" {
		return nil, fmt.Errorf(
			"%s: project must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.User == "" {
		return nil, fmt.Errorf(
			"%s: user must be set", errCtx,
		)
	}

	if cfg.Password == "" {
		return nil, fmt.Errorf(
			"%s: password must be set", errCtx,
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
			Owner: cfg.Project,
			Name:  cfg.Repo,
		},
		auth: httpapi.Auth{
			Credential: vcs.Credential{
				Username: cfg.User,
				Password: cfg.Password,
			},
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
		"listing open stash pull requests",
		p.paths.OpenPullRequests(p.repo),
	)
}

// MergedPullRequests lists the merged pull requests.
func (p *Provider) MergedPullRequests(
	ctx context.Context,
) (vcs.PullRequests, error) {
	return p.listPullRequests(
		ctx,
		"listing merged stash pull requests",
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
	const errCtx = "posting stash comment"

	req, err := httpapi.NewJSONRequest(
		http.MethodPost,
		p.paths.AddComment(p.repo, prID),
		newComment{Text: text},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

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

// Comment fetches a single comment, including its
// current version.
func (p *Provider) Comment(
	ctx context.Context,
	prID int,
	commentID int64,
) (*vcs.Comment, error) {
	const errCtx = "getting stash comment"

	c, err := httpapi.ExecuteAndDecode[comment](
		ctx,
		p.exec,
		httpapi.NewRequest(
			http.MethodGet,
			p.paths.Comment(p.repo, prID, commentID),
		),
		p.auth,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s %d on #%d: %w", errCtx, commentID, prID, err,
		)
	}

	return c.toDomain(), nil
}

// DeleteComment looks the comment up to learn its
// version and deletes it at that version. A comment
// that is already gone (404 on lookup) is left alone.
func (p *Provider) DeleteComment(
	ctx context.Context,
	prID int,
	commentID int64,
) error {
	const errCtx = "deleting stash comment"

	old, err := p.Comment(ctx, prID, commentID)
	if vcs.IsStatus(err, http.StatusNotFound) {
		slog.Warn(
			"comment not found, nothing to delete",
			"pr", prID,
			"comment", commentID,
		)

		return nil
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if old.Version == nil {
		return fmt.Errorf(
			"%s %d on #%d: %w: %w",
			errCtx, commentID, prID,
			vcs.ErrMalformedResponse, errNoVersion,
		)
	}

	if _, err := p.exec.Send(
		ctx,
		httpapi.NewRequest(
			http.MethodDelete,
			p.paths.DeleteComment(
				p.repo, prID, commentID, *old.Version,
			),
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
// The status key is the build type name followed by
// the build id.
func (p *Provider) UpdateStatus(
	ctx context.Context,
	commitHash string,
	message string,
	status vcs.CommitStatus,
	targetURL string,
	build vcs.BuildContext,
) error {
	const errCtx = "updating stash commit status"

	payload, err := newCommitStatus(
		status, build, message, targetURL,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	req, err := httpapi.NewJSONRequest(
		http.MethodPost,
		p.paths.UpdateStatus(commitHash),
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

// ApprovePullRequest approves a pull request as the
// configured user.
func (p *Provider) ApprovePullRequest(
	ctx context.Context,
	prID int,
) error {
	const errCtx = "approving stash pull request"

	name := p.auth.Credential.Username

	req, err := httpapi.NewJSONRequest(
		http.MethodPut,
		p.paths.Participant(p.repo, prID, name),
		approval{
			Approved: true,
			Status:   "APPROVED",
			User:     user{Name: name},
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := p.exec.Send(ctx, req, p.auth); err != nil {
		return fmt.Errorf("%s #%d: %w", errCtx, prID, err)
	}

	return nil
}

// ApprovePullRequestWithStatus approves a pull request.
// The payload always carries the APPROVED status;
// status is only logged.
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

// DeletePullRequestApproval removes the configured
// user's participant approval.
func (p *Provider) DeletePullRequestApproval(
	ctx context.Context,
	prID int,
) error {
	const errCtx = "removing stash approval"

	if _, err := p.exec.Send(
		ctx,
		httpapi.NewRequest(
			http.MethodDelete,
			p.paths.Participant(
				p.repo, prID, p.auth.Credential.Username,
			),
		),
		p.auth,
	); err != nil {
		return fmt.Errorf("%s #%d: %w", errCtx, prID, err)
	}

	return nil
}

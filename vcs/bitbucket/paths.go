package bitbucket

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/vcs_utils/vcs"
)

// DefaultBaseURL is the Bitbucket Cloud API root.
const DefaultBaseURL = "https://bitbucket.org/api"

const (
	repoV1 = "{{base}}/1.0/repositories/{{owner}}/{{repo}}"
	repoV2 = "{{base}}/2.0/repositories/{{owner}}/{{repo}}"

	tplOpened   = repoV2 + "/pullrequests?state=OPEN"
	tplMerged   = repoV2 + "/pullrequests?state=MERGED"
	tplComments = repoV1 + "/pullrequests/{{pr}}/comments"
	tplComment  = tplComments + "/{{comment}}"
	tplStatus   = repoV2 + "/commit/{{commit}}/statuses/build"
	tplApprove  = repoV2 + "/pullrequests/{{pr}}/approve"
)

// Paths builds Bitbucket Cloud endpoint URLs. It has no
// side effects.
type Paths struct {
	base string
}

// NewPaths returns Paths rooted at baseURL, or at
// DefaultBaseURL when empty.
func NewPaths(baseURL string) Paths {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return Paths{base: strings.TrimRight(baseURL, "/")}
}

func (p Paths) render(
	tpl string,
	repo vcs.Coordinate,
	extra map[string]any,
) string {
	m := map[string]any{
		"base":  p.base,
		"owner": url.PathEscape(repo.Owner),
		"repo":  url.PathEscape(repo.Name),
	}

	for k, v := range extra {
		m[k] = v
	}

	return fasttemplate.ExecuteString(tpl, "{{", "}}", m)
}

// OpenPullRequests returns the open pull request
// listing URL.
func (p Paths) OpenPullRequests(repo vcs.Coordinate) string {
	return p.render(tplOpened, repo, nil)
}

// MergedPullRequests returns the merged pull request
// listing URL.
func (p Paths) MergedPullRequests(repo vcs.Coordinate) string {
	return p.render(tplMerged, repo, nil)
}

// AddComment returns the comment creation URL.
func (p Paths) AddComment(repo vcs.Coordinate, prID int) string {
	return p.render(tplComments, repo, map[string]any{
		"pr": strconv.Itoa(prID),
	})
}

// Comment returns the URL of a single comment.
func (p Paths) Comment(
	repo vcs.Coordinate,
	prID int,
	commentID int64,
) string {
	return p.render(tplComment, repo, map[string]any{
		"pr":      strconv.Itoa(prID),
		"comment": strconv.FormatInt(commentID, 10),
	})
}

// UpdateStatus returns the build status URL of a
// commit.
func (p Paths) UpdateStatus(
	repo vcs.Coordinate,
	commitHash string,
) string {
	return p.render(tplStatus, repo, map[string]any{
		"commit": url.PathEscape(commitHash),
	})
}

// Approve returns the approval URL of a pull request.
// POST approves and DELETE withdraws the approval.
func (p Paths) Approve(repo vcs.Coordinate, prID int) string {
	return p.render(tplApprove, repo, map[string]any{
		"pr": strconv.Itoa(prID),
	})
}

package stash

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/vcs_utils/vcs"
)

const (
	repoAPI = "{{base}}/rest/api/1.0/projects/{{project}}/repos/{{repo}}"

	tplOpened      = repoAPI + "/pull-requests?state=OPEN"
	tplMerged      = repoAPI + "/pull-requests?state=MERGED"
	tplComments    = repoAPI + "/pull-requests/{{pr}}/comments"
	tplComment     = tplComments + "/{{comment}}"
	tplDelComment  = tplComment + "?version={{version}}"
	tplParticipant = repoAPI + "/pull-requests/{{pr}}/participants/{{user}}"
	tplStatus      = "{{base}}/rest/build-status/1.0/commits/{{commit}}"
)

// Paths builds Stash endpoint URLs. It has no side
// effects.
type Paths struct {
	base string
}

// NewPaths returns Paths rooted at the server URL.
func NewPaths(baseURL string) Paths {
	return Paths{base: strings.TrimRight(baseURL, "/")}
}

func (p Paths) render(
	tpl string,
	repo vcs.Coordinate,
	extra map[string]any,
) string {
	m := map[string]any{
		"base":    p.base,
		"project": url.PathEscape(repo.Owner),
		"repo":    url.PathEscape(repo.Name),
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

// DeleteComment returns the URL deleting a comment at
// the given version.
func (p Paths) DeleteComment(
	repo vcs.Coordinate,
	prID int,
	commentID int64,
	version int,
) string {
	return p.render(tplDelComment, repo, map[string]any{
		"pr":      strconv.Itoa(prID),
		"comment": strconv.FormatInt(commentID, 10),
		"version": strconv.Itoa(version),
	})
}

// Participant returns the URL of a user's participant
// entry, used to approve (PUT) and unapprove (DELETE).
func (p Paths) Participant(
	repo vcs.Coordinate,
	prID int,
	user string,
) string {
	return p.render(tplParticipant, repo, map[string]any{
		"pr":   strconv.Itoa(prID),
		"user": url.PathEscape(user),
	})
}

// UpdateStatus returns the build status URL of a
// commit. Build statuses are global to the server so
// the repository is not part of the URL.
func (p Paths) UpdateStatus(commitHash string) string {
	return fasttemplate.ExecuteString(
		tplStatus, "{{", "}}", map[string]any{
			"base":   p.base,
			"commit": url.PathEscape(commitHash),
		},
	)
}

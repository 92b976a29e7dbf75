package bitbucket

import (
	"fmt"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/timestamp"
)

type pullRequestPage struct {
	Values []pullRequest `json:"values"`
	Next   string        `json:"next,omitempty"`
}

type pullRequest struct {
	ID          int                 `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	State       string              `json:"state"`
	Source      endpoint            `json:"source"`
	Destination endpoint            `json:"destination"`
	CreatedOn   timestamp.Timestamp `json:"created_on"`
	UpdatedOn   timestamp.Timestamp `json:"updated_on"`
}

type endpoint struct {
	Branch *branch `json:"branch"`
	Commit *commit `json:"commit"`
}

type branch struct {
	Name string `json:"name"`
}

type commit struct {
	Hash string `json:"hash"`
}

type comment struct {
	CommentID      int64               `json:"comment_id"`
	Content        string              `json:"content"`
	UTCCreatedOn   timestamp.Timestamp `json:"utc_created_on"`
	UTCLastUpdated timestamp.Timestamp `json:"utc_last_updated"`
}

type commitStatus struct {
	State       string `json:"state"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (e endpoint) toTarget() vcs.PullRequestTarget {
	var t vcs.PullRequestTarget

	if e.Branch != nil {
		t.BranchRef = &vcs.Branch{Name: e.Branch.Name}
	}

	if e.Commit != nil {
		t.CommitRef = &vcs.Commit{Hash: e.Commit.Hash}
	}

	return t
}

func (pr pullRequest) toDomain() vcs.PullRequest {
	return vcs.PullRequest{
		ID:          pr.ID,
		Title:       pr.Title,
		Description: pr.Description,
		State:       vcs.ParseState(pr.State),
		Source:      pr.Source.toTarget(),
		Destination: pr.Destination.toTarget(),
		CreatedAt:   pr.CreatedOn,
		UpdatedAt:   pr.UpdatedOn,
	}
}

func (pg pullRequestPage) toDomain() vcs.PullRequests {
	items := make([]vcs.PullRequest, len(pg.Values))
	for i, pr := range pg.Values {
		items[i] = pr.toDomain()
	}

	return vcs.NewPullRequests(items...)
}

func (c comment) toDomain() *vcs.Comment {
	return &vcs.Comment{
		ID:        c.CommentID,
		Text:      c.Content,
		CreatedAt: c.UTCCreatedOn,
		UpdatedAt: c.UTCLastUpdated,
	}
}

// stateLabel renders a commit status in the Bitbucket
// Cloud build status vocabulary.
func stateLabel(s vcs.CommitStatus) (string, error) {
	switch s {
	case vcs.StatusPending:
		return "INPROGRESS", nil
	case vcs.StatusSuccessful:
		return "SUCCESSFUL", nil
	case vcs.StatusFailed:
		return "FAILED", nil
	default:
		return "", fmt.Errorf(
			"commit status %s: %w", s, vcs.ErrUnsupportedOperation,
		)
	}
}

func newCommitStatus(
	status vcs.CommitStatus,
	build vcs.BuildContext,
	message string,
	targetURL string,
) (commitStatus, error) {
	state, err := stateLabel(status)
	if err != nil {
		return commitStatus{}, err
	}

	return commitStatus{
		State:       state,
		Key:         build.BuildTypeID(),
		Name:        build.FullName(),
		URL:         targetURL,
		Description: message,
	}, nil
}

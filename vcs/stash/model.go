package stash

import (
	"fmt"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/timestamp"
)

type project struct {
	Key string `json:"key,omitempty"`
}

type repository struct {
	Slug    string  `json:"slug,omitempty"`
	Project project `json:"project"`
}

type ref struct {
	ID           string     `json:"id,omitempty"`
	DisplayID    string     `json:"displayId,omitempty"`
	LatestCommit string     `json:"latestCommit,omitempty"`
	Repository   repository `json:"repository"`
}

type pullRequest struct {
	ID          int                 `json:"id"`
	Version     int                 `json:"version"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	State       string              `json:"state"`
	Open        bool                `json:"open"`
	Closed      bool                `json:"closed"`
	FromRef     ref                 `json:"fromRef"`
	ToRef       ref                 `json:"toRef"`
	CreatedDate timestamp.Timestamp `json:"createdDate"`
	UpdatedDate timestamp.Timestamp `json:"updatedDate"`
}

type pullRequestPage struct {
	Size          int           `json:"size"`
	Limit         int           `json:"limit"`
	Start         int           `json:"start"`
	IsLastPage    bool          `json:"isLastPage"`
	NextPageStart int           `json:"nextPageStart"`
	Values        []pullRequest `json:"values"`
}

type comment struct {
	ID          int64               `json:"id,omitempty"`
	Version     *int                `json:"version,omitempty"`
	Text        string              `json:"text"`
	CreatedDate timestamp.Timestamp `json:"createdDate"`
	UpdatedDate timestamp.Timestamp `json:"updatedDate"`
}

// newComment is the body of a comment creation.
type newComment struct {
	Text string `json:"text"`
}

type user struct {
	Name string `json:"name,omitempty"`
}

type approval struct {
	Approved bool   `json:"approved"`
	Status   string `json:"status"`
	User     user   `json:"user"`
}

type commitStatus struct {
	State       string `json:"state"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// toTarget keeps the raw display id and commit; the
// vcs target derives branch and commit from them.
func (r ref) toTarget() vcs.PullRequestTarget {
	return vcs.PullRequestTarget{
		DisplayID:    r.DisplayID,
		LatestCommit: r.LatestCommit,
	}
}

func (pr pullRequest) toDomain() vcs.PullRequest {
	return vcs.PullRequest{
		ID:          pr.ID,
		Title:       pr.Title,
		Description: pr.Description,
		State:       vcs.ParseState(pr.State),
		Source:      pr.FromRef.toTarget(),
		Destination: pr.ToRef.toTarget(),
		CreatedAt:   pr.CreatedDate,
		UpdatedAt:   pr.UpdatedDate,
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
		ID:        c.ID,
		Text:      c.Text,
		Version:   c.Version,
		CreatedAt: c.CreatedDate,
		UpdatedAt: c.UpdatedDate,
	}
}

// stateLabel renders a commit status in the Stash build
// status vocabulary.
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

// newCommitStatus builds a status whose key combines
// the build type name and the build id, so every run
// gets its own entry.
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
		Key:         build.BuildTypeName() + build.BuildID(),
		Name:        build.FullName(),
		URL:         targetURL,
		Description: message,
	}, nil
}

package stash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/stash"
)

func TestPaths(t *testing.T) {
	t.Parallel()

	repo := vcs.Coordinate{Owner: "PROJ", Name: "app"}
	pt := stash.NewPaths("https://stash.example.com/")

	const api = "https://stash.example.com/rest/api/1.0/" +
		"projects/PROJ/repos/app/pull-requests"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "open",
			got:  pt.OpenPullRequests(repo),
			want: api + "?state=OPEN",
		},
		{
			name: "merged",
			got:  pt.MergedPullRequests(repo),
			want: api + "?state=MERGED",
		},
		{
			name: "add comment",
			got:  pt.AddComment(repo, 12),
			want: api + "/12/comments",
		},
		{
			name: "comment",
			got:  pt.Comment(repo, 12, 40),
			want: api + "/12/comments/40",
		},
		{
			name: "delete comment",
			got:  pt.DeleteComment(repo, 12, 40, 3),
			want: api + "/12/comments/40?version=3",
		},
		{
			name: "participant",
			got:  pt.Participant(repo, 12, "john.doe"),
			want: api + "/12/participants/john.doe",
		},
		{
			name: "participant escaped",
			got:  pt.Participant(repo, 12, "john doe"),
			want: api + "/12/participants/john%20doe",
		},
		{
			name: "status",
			got:  pt.UpdateStatus("cafe01"),
			want: "https://stash.example.com/rest/build-status/1.0/" +
				"commits/cafe01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.got)
		})
	}
}

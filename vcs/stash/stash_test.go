package stash_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/stash"
)

const api = "/rest/api/1.0/projects/PROJ/repos/app/pull-requests"

type call struct {
	method string
	path   string
	query  string
	user   string
	body   string
}

type route struct {
	status int
	body   string
}

// fakeStash answers from a route table keyed by
// "METHOD path?query" and records every call.
type fakeStash struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]route
}

func newFake(
	t *testing.T,
	routes map[string]route,
) (*fakeStash, *stash.Provider) {
	t.Helper()

	fk := &fakeStash{routes: routes}

	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			u, _, _ := r.BasicAuth()

			fk.mu.Lock()
			fk.calls = append(fk.calls, call{
				method: r.Method,
				path:   r.URL.Path,
				query:  r.URL.RawQuery,
				user:   u,
				body:   string(body),
			})
			fk.mu.Unlock()

			key := r.Method + " " + r.URL.Path
			if r.URL.RawQuery != "" {
				key += "?" + r.URL.RawQuery
			}

			rt, ok := fk.routes[key]
			if !ok {
				http.Error(w, "no route "+key, http.StatusNotFound)

				return
			}

			w.WriteHeader(rt.status)
			_, _ = io.WriteString(w, rt.body)
		},
	))
	t.Cleanup(ts.Close)

	pv, err := stash.NewProvider(stash.Config{
		BaseURL:  ts.URL,
		Project:  "PROJ",
		Repo:     "app",
		User:     "builder",
		Password: "secret",
	})
	require.NoError(t, err)

	return fk, pv
}

func (f *fakeStash) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]call(nil), f.calls...)
}

const openPage = `{
	"size": 1, "limit": 25, "start": 0, "isLastPage": true,
	"values": [
		{
			"id": 5,
			"version": 2,
			"title": "Feature X",
			"state": "OPEN",
			"open": true,
			"closed": false,
			"fromRef": {
				"id": "refs/heads/feature/x",
				"displayId": "feature/x",
				"latestCommit": "aaa111"
			},
			"toRef": {
				"id": "refs/heads/master",
				"displayId": "master",
				"latestCommit": "bbb222"
			},
			"createdDate": 1398934800123,
			"updatedDate": 1398934800123
		}
	]
}`

const mergedPage = `{
	"size": 2, "isLastPage": true,
	"values": [
		{
			"id": 9,
			"title": "Feature Y",
			"state": "MERGED",
			"fromRef": {"displayId": "feature/y", "latestCommit": "ccc"},
			"toRef": {"displayId": "master"}
		},
		{
			"id": 4,
			"title": "Feature X, first try",
			"state": "MERGED",
			"fromRef": {"displayId": "feature/x", "latestCommit": "ddd"},
			"toRef": {"displayId": "master"}
		}
	]
}`

func TestNewProvider_invalid(t *testing.T) {
	t.Parallel()

	valid := stash.Config{
		BaseURL:  "https://stash.example.com",
		Project:  "PROJ",
		Repo:     "app",
		User:     "builder",
		Password: "secret",
	}

	tests := []struct {
		name   string
		mutate func(*stash.Config)
		want   string
	}{
		{
			name:   "missing base url",
			mutate: func(c *stash.Config) { c.BaseURL = "" },
			want:   "base url must be set",
		},
		{
			name:   "missing project",
			mutate: func(c *stash.Config) { c.Project = "" },
			want:   "project must be set",
		},
		{
			name:   "missing repo",
			mutate: func(c *stash.Config) { c.Repo = "" },
			want:   "repo must be set",
		},
		{
			name:   "missing user",
			mutate: func(c *stash.Config) { c.User = "" },
			want:   "user must be set",
		},
		{
			name:   "missing password",
			mutate: func(c *stash.Config) { c.Password = "" },
			want:   "password must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			pv, err := stash.NewProvider(cfg)

			assert.Nil(t, pv)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestProvider_OpenPullRequests(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"GET " + api + "?state=OPEN": {
			status: http.StatusOK, body: openPage,
		},
	})

	prs, err := pv.OpenPullRequests(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, prs.Len())

	pr := prs.At(0)
	assert.Equal(t, 5, pr.ID)
	assert.Equal(t, vcs.StateOpen, pr.State)
	assert.Equal(t, "feature/x", pr.Source.Branch().Name)
	assert.Equal(t, "aaa111", pr.Source.Commit().Hash)
	assert.Equal(t, "master", pr.Destination.Branch().Name)
	assert.Equal(
		t, int64(1398934800123), pr.CreatedAt.UnixMilli(),
	)

	assert.Equal(t, "builder", fk.recorded()[0].user)
}

func TestProvider_MergedPullRequests_malformed_date(
	t *testing.T,
) {
	t.Parallel()

	_, pv := newFake(t, map[string]route{
		"GET " + api + "?state=MERGED": {
			status: http.StatusOK,
			body:   `{"values": [{"id": 1, "createdDate": "soon"}]}`,
		},
	})

	_, err := pv.MergedPullRequests(context.Background())
	assert.ErrorIs(t, err, vcs.ErrMalformedResponse)
}

func TestProvider_PullRequestForBranch(t *testing.T) {
	t.Parallel()

	routes := map[string]route{
		"GET " + api + "?state=OPEN": {
			status: http.StatusOK, body: openPage,
		},
		"GET " + api + "?state=MERGED": {
			status: http.StatusOK, body: mergedPage,
		},
	}

	tests := []struct {
		name   string
		branch string
		wantID int
		calls  int
	}{
		{
			name:   "open wins over merged",
			branch: "feature/x",
			wantID: 5,
			calls:  1,
		},
		{
			name:   "merged fallback",
			branch: "feature/y",
			wantID: 9,
			calls:  2,
		},
		{
			name:   "absent",
			branch: "feature/nope",
			calls:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fk, pv := newFake(t, routes)

			pr, err := pv.PullRequestForBranch(
				context.Background(), tt.branch,
			)
			require.NoError(t, err)

			if tt.wantID == 0 {
				assert.Nil(t, pr)
			} else {
				require.NotNil(t, pr)
				assert.Equal(t, tt.wantID, pr.ID)
			}

			assert.Len(t, fk.recorded(), tt.calls)
		})
	}
}

func TestProvider_PostComment(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"POST " + api + "/5/comments": {
			status: http.StatusCreated,
			body: `{
				"id": 40, "version": 0, "text": "Build passed",
				"createdDate": 1398934800123,
				"updatedDate": 1398934800123
			}`,
		},
	})

	c, err := pv.PostComment(
		context.Background(), 5, "Build passed",
	)
	require.NoError(t, err)
	assert.Equal(t, int64(40), c.ID)
	assert.Equal(t, "Build passed", c.Text)
	require.NotNil(t, c.Version)
	assert.Equal(t, 0, *c.Version)

	assert.JSONEq(
		t, `{"text":"Build passed"}`, fk.recorded()[0].body,
	)
}

func TestProvider_DeleteComment_uses_current_version(
	t *testing.T,
) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"GET " + api + "/5/comments/40": {
			status: http.StatusOK,
			body:   `{"id": 40, "version": 3, "text": "old"}`,
		},
		"DELETE " + api + "/5/comments/40?version=3": {
			status: http.StatusNoContent,
		},
	})

	err := pv.DeleteComment(context.Background(), 5, 40)
	require.NoError(t, err)

	calls := fk.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodGet, calls[0].method)
	assert.Equal(t, http.MethodDelete, calls[1].method)
	assert.Equal(t, "version=3", calls[1].query)
}

func TestProvider_DeleteComment_already_gone(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{})

	err := pv.DeleteComment(context.Background(), 5, 40)
	require.NoError(t, err)

	calls := fk.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].method)
}

func TestProvider_DeleteComment_lookup_error(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"GET " + api + "/5/comments/40": {
			status: http.StatusForbidden, body: "no",
		},
	})

	err := pv.DeleteComment(context.Background(), 5, 40)
	assert.True(t, vcs.IsStatus(err, http.StatusForbidden))
	assert.Len(t, fk.recorded(), 1)
}

func TestProvider_DeleteComment_conflict(t *testing.T) {
	t.Parallel()

	_, pv := newFake(t, map[string]route{
		"GET " + api + "/5/comments/40": {
			status: http.StatusOK,
			body:   `{"id": 40, "version": 1}`,
		},
		"DELETE " + api + "/5/comments/40?version=1": {
			status: http.StatusConflict, body: "stale",
		},
	})

	err := pv.DeleteComment(context.Background(), 5, 40)

	var se *vcs.UnexpectedStatusError

	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "stale", se.Body)
}

func TestProvider_DeleteComment_missing_version(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"GET " + api + "/5/comments/40": {
			status: http.StatusOK,
			body:   `{"id": 40, "text": "old"}`,
		},
	})

	err := pv.DeleteComment(context.Background(), 5, 40)
	assert.ErrorIs(t, err, vcs.ErrMalformedResponse)
	assert.Len(t, fk.recorded(), 1)
}

func TestProvider_UpdateStatus(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"POST /rest/build-status/1.0/commits/aaa111": {
			status: http.StatusNoContent,
		},
	})

	err := pv.UpdateStatus(
		context.Background(),
		"aaa111",
		"Build failed",
		vcs.StatusFailed,
		"https://ci.example.com/build/42",
		vcs.Build{
			TypeID:   "bt12",
			TypeName: "Unit",
			ID:       "42",
			Name:     "Project :: Unit",
		},
	)
	require.NoError(t, err)

	var got map[string]string

	require.NoError(
		t, json.Unmarshal([]byte(fk.recorded()[0].body), &got),
	)
	assert.Equal(t, map[string]string{
		"state":       "FAILED",
		"key":         "Unit42",
		"name":        "Project :: Unit",
		"url":         "https://ci.example.com/build/42",
		"description": "Build failed",
	}, got)
}

func TestProvider_Approve(t *testing.T) {
	t.Parallel()

	fk, pv := newFake(t, map[string]route{
		"PUT " + api + "/5/participants/builder": {
			status: http.StatusOK,
		},
		"DELETE " + api + "/5/participants/builder": {
			status: http.StatusOK,
		},
	})

	ctx := context.Background()

	require.NoError(t, pv.ApprovePullRequest(ctx, 5))
	require.NoError(
		t, pv.ApprovePullRequestWithStatus(ctx, 5, "NEEDS_WORK"),
	)
	require.NoError(t, pv.DeletePullRequestApproval(ctx, 5))

	calls := fk.recorded()
	require.Len(t, calls, 3)

	for _, c := range calls[:2] {
		assert.Equal(t, http.MethodPut, c.method)
		assert.JSONEq(t, `{
			"approved": true,
			"status": "APPROVED",
			"user": {"name": "builder"}
		}`, c.body)
	}

	assert.Equal(t, http.MethodDelete, calls[2].method)
	assert.Empty(t, calls[2].body)
}

func TestProvider_Approve_unexpected_status(t *testing.T) {
	t.Parallel()

	_, pv := newFake(t, map[string]route{})

	err := pv.ApprovePullRequest(context.Background(), 5)
	assert.True(t, vcs.IsStatus(err, http.StatusNotFound))
}

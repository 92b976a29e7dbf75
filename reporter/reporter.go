package reporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/vcs_utils/vcs"
)

// Default message templates. Placeholders are listed
// in templateContext.
const (
	DefaultStatusTemplate  = "{{build_name}} #{{build_id}} {{status}}"
	DefaultCommentTemplate = "Build {{build_name}} #{{build_id}} " +
		"{{status}}: {{url}}"
)

// Config holds the settings of a reporting run.
type Config struct {
	// Provider talks to the hosting platform.
	Provider vcs.Provider

	// StatusTemplate renders the commit status
	// description. Defaults to DefaultStatusTemplate.
	StatusTemplate string

	// CommentTemplate renders the pull request
	// comment. Defaults to DefaultCommentTemplate.
	CommentTemplate string

	// Approve approves the pull request on success and
	// withdraws the approval on failure.
	Approve bool
}

// Event describes the build being reported.
type Event struct {
	// Branch is the source branch that was built.
	Branch string

	// Commit is the built commit. Defaults to the
	// head commit of the pull request source.
	Commit string

	// Status is the build outcome.
	Status vcs.CommitStatus

	// TargetURL links back to the build.
	TargetURL string

	// Build identifies the build configuration and
	// run.
	Build vcs.Build

	// PreviousCommentID is the comment posted by an
	// earlier run, deleted before the new one is
	// posted. Zero means none.
	PreviousCommentID int64
}

// Result is what a run changed on the platform.
type Result struct {
	// PullRequest is the resolved pull request, nil
	// when the branch has none.
	PullRequest *vcs.PullRequest

	// Comment is the posted comment, nil for pending
	// builds or when there is no pull request.
	Comment *vcs.Comment
}

// Run reports ev. The commit status is always
// reported; comments and approvals only happen for a
// finished build with a pull request.
func Run(
	ctx context.Context,
	cfg Config,
	ev Event,
) (*Result, error) {
	const errCtx = "reporting build"

	if cfg.Provider == nil {
		return nil, fmt.Errorf(
			"%s: provider must be set", errCtx,
		)
	}

	res := &Result{}

	// Step 1: Resolve the pull request of the branch.
	if ev.Branch != "" {
		pr, err := cfg.Provider.PullRequestForBranch(
			ctx, ev.Branch,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		res.PullRequest = pr
	}

	commit := ev.Commit
	if commit == "" && res.PullRequest != nil {
		commit = res.PullRequest.Source.Commit().Hash
	}

	if commit == "" {
		return nil, fmt.Errorf(
			"%s: commit must be set when branch %q has no "+
				"pull request",
			errCtx, ev.Branch,
		)
	}

	tplCtx := templateContext(ev, commit, res.PullRequest)

	// Step 2: Report the commit status.
	if err := updateStatus(ctx, cfg, ev, commit, tplCtx); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if res.PullRequest == nil {
		slog.Info(
			"no pull request for branch",
			"branch", ev.Branch,
		)

		return res, nil
	}

	if !ev.Status.Finished() {
		return res, nil
	}

	prID := res.PullRequest.ID

	// Step 3: Replace the build comment.
	if ev.PreviousCommentID != 0 {
		if err := cfg.Provider.DeleteComment(
			ctx, prID, ev.PreviousCommentID,
		); err != nil {
			return nil, fmt.Errorf(
				"%s: delete previous comment: %w", errCtx, err,
			)
		}
	}

	c, err := cfg.Provider.PostComment(
		ctx,
		prID,
		render(cfg.CommentTemplate, DefaultCommentTemplate, tplCtx),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Comment = c

	slog.Info(
		"posted build comment",
		"pr", prID,
		"comment", c.ID,
	)

	// Step 4: Approve or withdraw the approval.
	if cfg.Approve {
		if err := updateApproval(
			ctx, cfg.Provider, prID, ev.Status,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return res, nil
}

// updateStatus reports the commit status. Providers
// without build statuses are skipped.
func updateStatus(
	ctx context.Context,
	cfg Config,
	ev Event,
	commit string,
	tplCtx map[string]any,
) error {
	err := cfg.Provider.UpdateStatus(
		ctx,
		commit,
		render(cfg.StatusTemplate, DefaultStatusTemplate, tplCtx),
		ev.Status,
		ev.TargetURL,
		ev.Build,
	)
	if errors.Is(err, vcs.ErrUnsupportedOperation) {
		slog.Warn(
			"provider does not support commit status",
			"error", err,
		)

		return nil
	}

	if err != nil {
		return err
	}

	slog.Info(
		"reported commit status",
		"commit", commit,
		"status", ev.Status.String(),
	)

	return nil
}

// updateApproval approves a successful build and
// withdraws the approval of a failed one. Withdrawing
// an approval that does not exist is not an error.
func updateApproval(
	ctx context.Context,
	pv vcs.Provider,
	prID int,
	status vcs.CommitStatus,
) error {
	if status == vcs.StatusSuccessful {
		return pv.ApprovePullRequest(ctx, prID)
	}

	err := pv.DeletePullRequestApproval(ctx, prID)
	if vcs.IsStatus(err, http.StatusNotFound) {
		slog.Info("no approval to withdraw", "pr", prID)

		return nil
	}

	return err
}

// templateContext creates the template variables for
// status and comment messages.
func templateContext(
	ev Event,
	commit string,
	pr *vcs.PullRequest,
) map[string]any {
	ctx := map[string]any{
		"branch":     ev.Branch,
		"commit":     commit,
		"status":     ev.Status.String(),
		"url":        ev.TargetURL,
		"build_id":   ev.Build.BuildID(),
		"build_name": ev.Build.FullName(),
		"build_type": ev.Build.BuildTypeName(),
		"pr":         "",
		"pr_title":   "",
	}

	if pr != nil {
		ctx["pr"] = strconv.Itoa(pr.ID)
		ctx["pr_title"] = pr.Title
	}

	return ctx
}

// render substitutes {{var}} placeholders of tpl, or of
// def when tpl is empty. Unknown placeholders are kept.
func render(tpl string, def string, ctx map[string]any) string {
	if tpl == "" {
		tpl = def
	}

	return fasttemplate.ExecuteStringStd(tpl, "{{", "}}", ctx)
}

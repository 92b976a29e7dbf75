// Command vcs_report publishes a CI build result on the pull request of a
// branch: commit status, build comment and approval. Provider settings come
// from an optional YAML file, flags override them, and secrets can be read
// from the OS keyring. The id of the posted comment is printed on stdout so
// the next run can replace it with -previous_comment_id.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/byte4ever/vcs_utils/buildinfo"
	"github.com/byte4ever/vcs_utils/reporter"
	"github.com/byte4ever/vcs_utils/vcs"
)

// sliceFlag implements flag.Value for multi-value
// string flags (repeated --flag=val usage).
type sliceFlag []string

// String returns the flag value as a comma-separated
// string representation.
func (s *sliceFlag) String() string {
	if s == nil {
		return ""
	}

	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *sliceFlag) Set(val string) error {
	*s = append(*s, val)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func run() error {
	const errCtx = "running vcs_report"

	configPath := flag.String(
		"config", "",
		"YAML settings file",
	)
	logLevel := flag.String(
		"log_level", "info",
		"Log level: debug, info, warn or error",
	)

	// Provider flags.
	server := flag.String(
		"server", "",
		"Git hosting platform: bitbucket or stash",
	)
	baseURL := flag.String(
		"base_url", "",
		"API root (bitbucket) or server URL (stash)",
	)
	owner := flag.String(
		"owner", "",
		"Repository owner (bitbucket) or project key (stash)",
	)
	repo := flag.String(
		"repo", "",
		"Repository slug",
	)
	user := flag.String(
		"user", "",
		"API username",
	)
	password := flag.String(
		"password", "",
		"API password",
	)
	authToken := flag.String(
		"auth_token", "",
		"Bitbucket access token",
	)
	timeout := flag.String(
		"timeout", "",
		"Per request timeout (e.g. 30s)",
	)
	cache := flag.Bool(
		"cache", false,
		"Revalidate listings with ETags",
	)
	keyringService := flag.String(
		"keyring_service", "",
		"OS keyring service holding the secrets",
	)

	// Build flags.
	branch := flag.String(
		"branch", "",
		"Built source branch",
	)
	commit := flag.String(
		"commit", "",
		"Built commit (default: pull request head)",
	)
	status := flag.String(
		"status", "pending",
		"Build status: pending, successful or failed",
	)
	targetURL := flag.String(
		"target_url", "",
		"Link back to the build",
	)
	buildTypeID := flag.String(
		"build_type_id", "",
		"Build configuration id",
	)
	buildTypeName := flag.String(
		"build_type_name", "",
		"Build configuration name",
	)
	buildID := flag.String(
		"build_id", "",
		"Build run id",
	)
	buildName := flag.String(
		"build_name", "",
		"Human readable build name",
	)

	var buildProps sliceFlag

	flag.Var(
		&buildProps,
		"build_properties",
		"CI build properties file (repeatable)",
	)

	prevComment := flag.Int64(
		"previous_comment_id", 0,
		"Comment of a previous run to replace",
	)
	approve := flag.Bool(
		"approve", false,
		"Approve on success, unapprove on failure",
	)

	flag.Parse()

	if err := setupLogging(*logLevel); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	var settings reporter.Settings

	if *configPath != "" {
		s, err := reporter.LoadSettings(*configPath)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		settings = s
	}

	// Flags given on the command line win over the
	// settings file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			settings.Server = *server
		case "base_url":
			settings.BaseURL = *baseURL
		case "owner":
			settings.Owner = *owner
		case "repo":
			settings.Repo = *repo
		case "user":
			settings.User = *user
		case "password":
			settings.Password = *password
		case "auth_token":
			settings.AuthToken = *authToken
		case "timeout":
			settings.Timeout = *timeout
		case "cache":
			settings.Cache = *cache
		case "approve":
			settings.Approve = *approve
		case "keyring_service":
			settings.Keyring.Service = *keyringService
		default:
		}
	})

	if settings.Keyring.Service != "" {
		if err := resolveSecrets(&settings); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	provider, err := reporter.NewProvider(settings)
	if err != nil {
		return fmt.Errorf(
			"%s: create provider: %w", errCtx, err,
		)
	}

	st, err := vcs.ParseCommitStatus(*status)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	props, err := buildinfo.Load(buildProps)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	build := buildinfo.Merge(
		buildinfo.FromProperties(props),
		vcs.Build{
			TypeID:   *buildTypeID,
			TypeName: *buildTypeName,
			ID:       *buildID,
			Name:     *buildName,
		},
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt,
	)
	defer stop()

	res, err := reporter.Run(
		ctx,
		reporter.Config{
			Provider:        provider,
			StatusTemplate:  settings.StatusTemplate,
			CommentTemplate: settings.CommentTemplate,
			Approve:         settings.Approve,
		},
		reporter.Event{
			Branch:            *branch,
			Commit:            *commit,
			Status:            st,
			TargetURL:         *targetURL,
			Build:             build,
			PreviousCommentID: *prevComment,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if res.Comment != nil {
		if _, err := fmt.Fprintln(
			os.Stdout, res.Comment.ID,
		); err != nil {
			return fmt.Errorf(
				"%s: writing to stdout: %w", errCtx, err,
			)
		}
	}

	return nil
}

// resolveSecrets fills missing secrets from the OS
// keyring. Keys default to "password" and "auth_token".
func resolveSecrets(s *reporter.Settings) error {
	if s.Keyring.PasswordKey == "" {
		s.Keyring.PasswordKey = "password"
	}

	if s.Keyring.TokenKey == "" {
		s.Keyring.TokenKey = "auth_token"
	}

	ring, err := reporter.OpenKeyring(s.Keyring.Service)
	if err != nil {
		return err
	}

	return reporter.ResolveSecrets(s, ring)
}

// setupLogging installs a text handler on stderr at
// the given level.
func setupLogging(level string) error {
	var lv slog.Level

	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: lv},
	)))

	return nil
}

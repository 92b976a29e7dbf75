package reporter

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/99designs/keyring"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/vcs_utils/vcs"
	"github.com/byte4ever/vcs_utils/vcs/bitbucket"
	"github.com/byte4ever/vcs_utils/vcs/httpapi"
	"github.com/byte4ever/vcs_utils/vcs/stash"
)

// Supported servers.
const (
	ServerBitbucket = "bitbucket"
	ServerStash     = "stash"
)

// Settings selects and configures the provider. They
// are read from a YAML file and overridden by flags.
type Settings struct {
	Server    string `yaml:"server"`
	BaseURL   string `yaml:"base_url"`
	Owner     string `yaml:"owner"`
	Repo      string `yaml:"repo"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	AuthToken string `yaml:"auth_token"`

	// Timeout bounds each HTTP round trip, as a Go
	// duration string. Empty means no timeout.
	Timeout string `yaml:"timeout"`
	// Cache enables ETag revalidation of listings.
	Cache bool `yaml:"cache"`

	Approve         bool   `yaml:"approve"`
	StatusTemplate  string `yaml:"status_template"`
	CommentTemplate string `yaml:"comment_template"`

	Keyring KeyringSettings `yaml:"keyring"`
}

// KeyringSettings names the OS keyring entries holding
// the password and the auth token.
type KeyringSettings struct {
	Service     string `yaml:"service"`
	PasswordKey string `yaml:"password_key"`
	TokenKey    string `yaml:"token_key"`
}

// LoadSettings reads Settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	const errCtx = "loading settings"

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf(
			"%s: parse %s: %w", errCtx, path, err,
		)
	}

	return s, nil
}

// ResolveSecrets fills the empty password and auth
// token of s from ring, using the keys of s.Keyring. A
// missing keyring entry leaves the field empty.
func ResolveSecrets(s *Settings, ring keyring.Keyring) error {
	const errCtx = "resolving secrets"

	lookup := func(key string, dst *string) error {
		if key == "" || *dst != "" {
			return nil
		}

		item, err := ring.Get(key)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%s: %s: %w", errCtx, key, err)
		}

		*dst = string(item.Data)

		return nil
	}

	if err := lookup(s.Keyring.PasswordKey, &s.Password); err != nil {
		return err
	}

	return lookup(s.Keyring.TokenKey, &s.AuthToken)
}

// OpenKeyring opens the OS keyring of service.
func OpenKeyring(service string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}

	return ring, nil
}

// NewProvider creates the vcs.Provider selected by
// s.Server.
//
// Pattern: Factory -- selects platform implementation
// at runtime.
func NewProvider(s Settings) (vcs.Provider, error) {
	const errCtx = "creating provider"

	client := &http.Client{}

	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: timeout: %w", errCtx, err,
			)
		}

		client.Timeout = d
	}

	ex := httpapi.NewExecutor(httpapi.Config{
		Client:    client,
		Cache:     s.Cache,
		UserAgent: "vcs_report",
	})

	switch s.Server {
	case ServerBitbucket:
		p, err := bitbucket.NewProvider(bitbucket.Config{
			BaseURL:   s.BaseURL,
			Owner:     s.Owner,
			Repo:      s.Repo,
			User:      s.User,
			Password:  s.Password,
			AuthToken: s.AuthToken,
			Executor:  ex,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return p, nil

	case ServerStash:
		p, err := stash.NewProvider(stash.Config{
			BaseURL:  s.BaseURL,
			Project:  s.Owner,
			Repo:     s.Repo,
			User:     s.User,
			Password: s.Password,
			Executor: ex,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return p, nil

	default:
		return nil, fmt.Errorf(
			"%s: unknown server %q", errCtx, s.Server,
		)
	}
}

package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/byte4ever/vcs_utils/vcs"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the settings of an Executor.
type Config struct {
	// Client sends the requests. http.DefaultClient
	// is used when nil.
	Client *http.Client
	// Cache enables ETag based revalidation of GET
	// responses with an in-memory cache.
	Cache bool
	// UserAgent is sent with every request when set.
	UserAgent string
}

// Auth selects the credentials attached to a request.
// A non-empty Token is sent as a bearer identity and
// takes precedence over the basic Credential.
type Auth struct {
	Credential vcs.Credential
	Token      string
}

// apply sets the authorization header on req.
func (a Auth) apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)

		return
	}

	if a.Credential.Username != "" || !a.Credential.IsZero() {
		req.SetBasicAuth(
			a.Credential.Username, a.Credential.Password,
		)
	}
}

// Response is the raw result of an executed request.
type Response struct {
	Request    Request
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Executor dispatches authenticated requests. It holds
// no state besides the wrapped client and is safe for
// concurrent use.
type Executor struct {
	doer      Doer
	userAgent string
}

// NewExecutor returns an Executor for cfg.
func NewExecutor(cfg Config) *Executor {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}

	if cfg.Cache {
		base := client.Transport
		if base == nil {
			base = http.DefaultTransport
		}

		cacheTransport := httpcache.NewMemoryCacheTransport()
		cacheTransport.Transport = base

		client = &http.Client{
			Transport:     cacheTransport,
			CheckRedirect: client.CheckRedirect,
			Jar:           client.Jar,
			Timeout:       client.Timeout,
		}
	}

	return &Executor{
		doer:      client,
		userAgent: cfg.UserAgent,
	}
}

// NewExecutorWithDoer returns an Executor sending its
// requests through doer.
func NewExecutorWithDoer(doer Doer, userAgent string) *Executor {
	return &Executor{doer: doer, userAgent: userAgent}
}

// Execute sends req with auth and returns the raw
// response whatever its status. Transport failures are
// returned as *vcs.TransportError.
func (e *Executor) Execute(
	ctx context.Context,
	req Request,
	auth Auth,
) (*Response, error) {
	const errCtx = "executing request"

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	hr, err := http.NewRequestWithContext(
		ctx, req.Method, req.URL, body,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: build %s: %w", errCtx, req, err,
		)
	}

	hr.Header.Set("Accept", "application/json")

	if req.Body != nil {
		ct := req.ContentType
		if ct == "" {
			ct = ContentTypeJSON
		}

		hr.Header.Set("Content-Type", ct)
	}

	if e.userAgent != "" {
		hr.Header.Set("User-Agent", e.userAgent)
	}

	auth.apply(hr)

	start := time.Now()

	resp, err := e.doer.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, &vcs.TransportError{
			Method: req.Method,
			URL:    req.URL,
			Err:    err,
		})
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, &vcs.TransportError{
			Method: req.Method,
			URL:    req.URL,
			Err:    fmt.Errorf("read body: %w", err),
		})
	}

	slog.Debug(
		"vcs api call",
		"request", req.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	return &Response{
		Request:    req,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       rb,
	}, nil
}

// Send executes req and fails with
// *vcs.UnexpectedStatusError unless the response
// status is 2xx.
func (e *Executor) Send(
	ctx context.Context,
	req Request,
	auth Auth,
) (*Response, error) {
	resp, err := e.Execute(ctx, req, auth)
	if err != nil {
		return nil, err
	}

	if err := CheckStatus(resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// ExecuteAndDecode executes req and decodes the 2xx
// response body into a T.
func ExecuteAndDecode[T any](
	ctx context.Context,
	e *Executor,
	req Request,
	auth Auth,
) (*T, error) {
	resp, err := e.Execute(ctx, req, auth)
	if err != nil {
		return nil, err
	}

	return Decode[T](resp)
}

package httpapi

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/vcs_utils/vcs"
)

// CheckStatus returns *vcs.UnexpectedStatusError for a
// response outside the 2xx range.
func CheckStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &vcs.UnexpectedStatusError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

// Decode checks the response status and decodes the
// body into a T. Decoding failures, timestamp ones
// included, are reported as vcs.ErrMalformedResponse.
func Decode[T any](resp *Response) (*T, error) {
	const errCtx = "processing response"

	if err := CheckStatus(resp); err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf(
			"%s: %s: %w: %w",
			errCtx, resp.Request, vcs.ErrMalformedResponse, err,
		)
	}

	return &out, nil
}

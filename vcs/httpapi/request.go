package httpapi

import (
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// Content types set on request bodies.
const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Request is an outgoing API call. Body is sent with
// ContentType when non-nil.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
}

// NewRequest returns a request without a body.
func NewRequest(method string, rawURL string) Request {
	return Request{Method: method, URL: rawURL}
}

// NewJSONRequest encodes payload as the JSON body of
// the request.
func NewJSONRequest(
	method string,
	rawURL string,
	payload any,
) (Request, error) {
	const errCtx = "building json request"

	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf(
			"%s: marshal payload: %w", errCtx, err,
		)
	}

	return Request{
		Method:      method,
		URL:         rawURL,
		Body:        body,
		ContentType: ContentTypeJSON,
	}, nil
}

// NewFormRequest encodes values as a url-encoded form
// body.
func NewFormRequest(
	method string,
	rawURL string,
	values url.Values,
) Request {
	return Request{
		Method:      method,
		URL:         rawURL,
		Body:        []byte(values.Encode()),
		ContentType: ContentTypeForm,
	}
}

// String returns "METHOD url" without the query, for
// error messages and logs.
func (r Request) String() string {
	u, _, _ := strings.Cut(r.URL, "?")

	return r.Method + " " + u
}

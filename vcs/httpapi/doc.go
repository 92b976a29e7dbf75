// Package httpapi sends authenticated JSON requests to hosting platform REST
// APIs and classifies their responses. Executor attaches credentials and the
// standard headers and dispatches through an http.Client; CheckStatus and
// Decode turn the raw Response into a domain value or a vcs error.
package httpapi

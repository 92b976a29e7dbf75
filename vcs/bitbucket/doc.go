// Package bitbucket implements a vcs.Provider for Bitbucket Cloud. Pull
// requests, commit statuses and approvals use the 2.0 REST API; comments use
// the 1.0 API, which takes form-encoded bodies and deletes without a version.
package bitbucket

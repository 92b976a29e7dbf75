// Package vcs defines a provider-agnostic view of pull requests on hosted
// git services and the operations a build server needs on them: listing
// pull requests, commenting, reporting commit build status and approving.
//
// The Provider interface abstracts the REST dialect of each host.
// Implementations exist for Bitbucket Cloud and Stash (Bitbucket Server) in
// sub-packages. FindPullRequestForBranch implements the open-then-merged
// branch resolution shared by every provider.
package vcs

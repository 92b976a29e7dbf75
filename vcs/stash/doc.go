// Package stash implements a vcs.Provider for Stash (Bitbucket Server /
// Data Center) using the REST 1.0 and build-status 1.0 APIs.
//
// Stash guards comment deletion with an optimistic concurrency version. The
// provider reads the comment right before deleting it to obtain the current
// version. This only satisfies the protocol: a concurrent edit between the
// two calls still makes the delete fail with a 409.
package stash

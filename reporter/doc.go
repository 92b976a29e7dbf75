// Package reporter publishes the outcome of a CI build on the pull request
// built from a branch. It resolves the pull request through a vcs.Provider,
// reports the commit status, replaces the build comment and approves or
// withdraws the approval depending on the result.
//
// The main entry point is Run, which accepts a Config and the build Event.
// Settings and NewProvider build the provider from a YAML file, flags and the
// OS keyring for the vcs_report command.
package reporter

// Package buildinfo reads the build properties file written by the CI server
// and turns it into a vcs.Build. Lines are "key=value" or "KEY VALUE"; the
// first separator wins. Load merges several files, later ones overriding
// earlier keys.
package buildinfo

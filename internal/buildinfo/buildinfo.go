// Package buildinfo carries the version stamped in with -ldflags.
package buildinfo

import "runtime"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for window titles.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Line returns a one-line build description for logs.
func Line() string {
	s := "sgf " + Short()
	if Date != "" && Date != "unknown" {
		s += " (" + Date + ")"
	}
	return s + " " + runtime.GOOS + "/" + runtime.GOARCH
}

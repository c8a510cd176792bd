// Package vetdb contains build information for the vetdb command.
package vetdb

var (
	// Version of vetdb, set by build flags.
	Version = "v0.1.0"
	// Build timestamp, set by build flags.
	Build = "n/a"
)

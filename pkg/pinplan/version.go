// Package pinplan plans pairwise isolation test campaigns over N pins.
//
// Version: 0.1.0
//
// Two strategies are provided. The Verifier proves that every pair of pins
// is isolated using ⌈log2 N⌉ oracle calls, one per bit-plane bipartition of
// the pins' zero-based indices. The Planner builds test batches greedily
// until every pair has been split by some batch. A Campaign runs many such
// jobs concurrently on a bounded worker pool.
package pinplan

import "runtime"

// Version represents the current version of pinplan.
const Version = "0.1.0"

// VersionInfo provides detailed version information.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
	}
}

// Package status decides which jobs of a workflow are outdated with respect
// to the filesystem. It stats every registered path once, flags locally
// outdated jobs from modification times, then propagates staleness through
// the job-level graph in topological order. The analyzer only ever reads
// the filesystem.
package status

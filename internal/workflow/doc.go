// Package workflow holds the in-memory model of a file-based data-processing
// workflow: a bipartite graph of jobs and the paths they consume and produce.
// Mutations validate the structural invariants atomically, so a workflow is
// never observable in a broken state.
//
// The job-level projection of the graph (producer -> consumer edges through
// shared paths) drives cycle rejection and the canonical topological order
// used by every exporter.
package workflow

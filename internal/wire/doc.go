// Package wire persists workflows as deterministic key/value documents,
// YAML by default with a JSON rendering of the same tree, transparently
// gzipped when the file name ends in .gz. Loading rebuilds the workflow
// through the same validated mutation path used by live construction, so a
// document that violates the structural invariants is rejected.
package wire

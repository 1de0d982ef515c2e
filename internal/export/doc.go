// Package export renders an ordered, optionally outdated-filtered workflow
// into one of the supported target formats: plain shell, Makefile,
// Makeflow, Drake, SLURM sbatch, TORQUE/PBS array, Graphviz DOT, and the
// terminal echo listing.
//
// Every exporter is pure: it renders all job bodies up front, so a template
// fault aborts the export before a single byte is written, and identical
// construction sequences produce byte-identical scripts.
package export

// Package render materializes per-job command bodies: it derives the
// variable environment from a job's input and output paths and substitutes
// it into the job template with one of two pluggable engines. Rendering is
// pure: the same template and environment always produce identical bytes.
package render

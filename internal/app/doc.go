// Package app wires the toolkit together: it configures logging, loads the
// requested workflow (serialized document or HCL grid file), runs the
// analyzer when a command needs job status, and dispatches to the exporter
// or listing the user asked for.
package app

// Package gridfile loads workflow definitions written in HCL: a `workflow`
// block naming the workflow and selecting the template engine, followed by
// `job` blocks declaring inputs, outputs, template, and data payload. Jobs
// go through the same validated mutation path as programmatic construction.
package gridfile

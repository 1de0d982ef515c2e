package wire

import (
	"time"

	"github.com/spatekit/spate/internal/workflow"
)

// Document is the on-disk shape of a workflow.
type Document struct {
	Name string         `yaml:"name" json:"name"`
	Data map[string]any `yaml:"data,omitempty" json:"data,omitempty"`
	Jobs []JobDocument  `yaml:"jobs" json:"jobs"`
}

// JobDocument is the on-disk shape of one job. Template serializes as null
// when absent; an absent Data is null in JSON and an empty map in YAML.
// CreatedAt is integer milliseconds since the epoch.
type JobDocument struct {
	ID        string         `yaml:"id" json:"id"`
	Inputs    []string       `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs   []string       `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Template  *string        `yaml:"template" json:"template"`
	Data      map[string]any `yaml:"data" json:"data"`
	CreatedAt int64          `yaml:"created_at" json:"created_at"`
}

// FromWorkflow captures a workflow as a document, jobs in the canonical
// topological order and paths in their per-job order.
func FromWorkflow(w *workflow.Workflow) *Document {
	doc := &Document{
		Name: w.Name(),
		Jobs: make([]JobDocument, 0, w.NumberOfJobs()),
	}
	if vars := w.Vars(); len(vars) > 0 {
		doc.Data = vars
	}

	for _, id := range w.ListJobs() {
		job, err := w.GetJob(id)
		if err != nil {
			continue // unreachable: ListJobs only yields existing jobs
		}
		entry := JobDocument{
			ID:        id,
			Inputs:    job.Inputs(),
			Outputs:   job.Outputs(),
			Data:      job.Data(),
			CreatedAt: job.CreatedAt().UnixMilli(),
		}
		if !job.Abstract() {
			tmpl := job.Template()
			entry.Template = &tmpl
		}
		doc.Jobs = append(doc.Jobs, entry)
	}
	return doc
}

// Workflow rebuilds a workflow from a document. Every job goes through the
// regular validated AddJob path; any invariant violation surfaces as a
// SerializationError wrapping the underlying fault.
func (d *Document) Workflow(opts ...workflow.Option) (*workflow.Workflow, error) {
	w, err := workflow.New(d.Name, opts...)
	if err != nil {
		return nil, serializationError("invalid workflow name", err)
	}
	if len(d.Data) > 0 {
		w.SetVars(d.Data)
	}

	for _, entry := range d.Jobs {
		spec := workflow.JobSpec{
			ID:        entry.ID,
			Inputs:    workflow.Paths(entry.Inputs...),
			Outputs:   workflow.Paths(entry.Outputs...),
			Data:      entry.Data,
			CreatedAt: time.UnixMilli(entry.CreatedAt),
		}
		if entry.Template != nil {
			spec.Template = *entry.Template
		}
		if _, err := w.AddJob(spec); err != nil {
			return nil, serializationError("invalid job "+entry.ID, err)
		}
	}
	return w, nil
}

func serializationError(msg string, err error) error {
	return &workflow.Error{Kind: workflow.KindSerialization, Msg: msg, Err: err}
}

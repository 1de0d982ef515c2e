package workflow

import (
	"fmt"
	"log/slog"
	"time"
	"unicode"
)

// Workflow owns its jobs and paths. Jobs and path records reference each
// other by key only, so there are no ownership cycles to manage.
type Workflow struct {
	name      string
	jobs      map[string]*Job
	paths     map[string]*pathRecord
	pathOrder []string
	vars      map[string]any
	now       func() time.Time
}

// Option adjusts workflow construction.
type Option func(*Workflow)

// WithClock replaces the timestamp source used for job creation times.
// Tests use it to pin deterministic created_at values.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// ValidateName checks a workflow or job name: non-empty and free of
// control characters.
func ValidateName(name string) error {
	if name == "" {
		return Errorf(KindInvalidName, "name must not be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return Errorf(KindInvalidName, "name %q contains control characters", name)
		}
	}
	return nil
}

// New creates an empty, named workflow.
func New(name string, opts ...Option) (*Workflow, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	w := &Workflow{
		name:  name,
		jobs:  make(map[string]*Job),
		paths: make(map[string]*pathRecord),
		vars:  make(map[string]any),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	slog.Debug("created a new workflow", "name", name)
	return w, nil
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// SetName renames the workflow.
func (w *Workflow) SetName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	w.name = name
	return nil
}

// Vars returns a shallow copy of the workflow-level variables.
func (w *Workflow) Vars() map[string]any {
	out := make(map[string]any, len(w.vars))
	for k, v := range w.vars {
		out[k] = v
	}
	return out
}

// SetVar sets one workflow-level variable.
func (w *Workflow) SetVar(key string, value any) {
	w.vars[key] = value
}

// SetVars replaces all workflow-level variables.
func (w *Workflow) SetVars(vars map[string]any) {
	w.vars = make(map[string]any, len(vars))
	for k, v := range vars {
		w.vars[k] = v
	}
}

// NumberOfJobs returns the number of jobs in the workflow.
func (w *Workflow) NumberOfJobs() int {
	return len(w.jobs)
}

// HasJob reports whether a job with this identifier exists.
func (w *Workflow) HasJob(id string) bool {
	_, ok := w.jobs[id]
	return ok
}

// GetJob returns the job with this identifier.
func (w *Workflow) GetJob(id string) (*Job, error) {
	j, ok := w.jobs[id]
	if !ok {
		return nil, Errorf(KindUnknownJob, "unknown job %q", id)
	}
	return j, nil
}

// freshJobID generates the first unused identifier of the form job_<k>.
func (w *Workflow) freshJobID() string {
	for k := 0; ; k++ {
		id := fmt.Sprintf("job_%d", k)
		if _, taken := w.jobs[id]; !taken {
			return id
		}
	}
}

// AddJob validates and adds one job atomically: on any failure the
// workflow is unchanged. It returns the job identifier, generated when the
// spec leaves it blank.
func (w *Workflow) AddJob(spec JobSpec) (string, error) {
	id := spec.ID
	if id == "" {
		id = w.freshJobID()
	} else if err := ValidateName(id); err != nil {
		return "", err
	}

	if _, taken := w.jobs[id]; taken {
		return "", Errorf(KindDuplicateJob, "job identifier %q already taken", id)
	}

	inputs, err := normalizeAll(spec.Inputs)
	if err != nil {
		return "", err
	}
	outputs, err := normalizeAll(spec.Outputs)
	if err != nil {
		return "", err
	}

	if len(inputs) == 0 && len(outputs) == 0 {
		return "", Errorf(KindEmptyJob, "job %q declares no input and no output", id)
	}

	seen := make(map[string]struct{}, len(inputs)+len(outputs))
	for _, p := range inputs {
		if _, dup := seen[p]; dup {
			return "", Errorf(KindDuplicatePath, "job %q lists path %q more than once", id, p)
		}
		seen[p] = struct{}{}
	}
	for _, p := range outputs {
		if _, dup := seen[p]; dup {
			return "", Errorf(KindDuplicatePath, "job %q lists path %q more than once", id, p)
		}
		seen[p] = struct{}{}
	}

	for _, p := range outputs {
		if rec, ok := w.paths[p]; ok {
			if producer, has := rec.producer(); has {
				return "", Errorf(KindDoubleProducer,
					"path %q is already produced by job %q", p, producer)
			}
		}
	}

	createdAt := spec.CreatedAt
	if createdAt.IsZero() {
		createdAt = w.now()
	}
	// Keep the millisecond resolution the serialized form carries, so a
	// reloaded workflow orders its jobs exactly as this one does.
	createdAt = createdAt.Truncate(time.Millisecond)

	job := &Job{
		id:        id,
		template:  spec.Template,
		inputs:    inputs,
		outputs:   outputs,
		createdAt: createdAt,
	}
	if len(spec.Data) > 0 {
		job.data = make(map[string]any, len(spec.Data))
		for k, v := range spec.Data {
			job.data[k] = v
		}
	}

	// The candidate edge set is inspected before mutation: the prospective
	// job-level graph must stay acyclic or the workflow is left untouched.
	if err := w.checkAcyclic(job); err != nil {
		return "", err
	}

	w.jobs[id] = job
	w.registerJobPaths(job)

	slog.Debug("job added",
		"workflow", w.name, "job", id, "inputs", inputs, "outputs", outputs)
	return id, nil
}

// RemoveJob removes a job and discards any path left orphaned.
func (w *Workflow) RemoveJob(id string) error {
	job, ok := w.jobs[id]
	if !ok {
		return Errorf(KindUnknownJob, "unknown job %q", id)
	}

	delete(w.jobs, id)
	w.unregisterJobPaths(job)

	slog.Debug("job removed", "workflow", w.name, "job", id)
	return nil
}

package workflow

// Merge unions two workflows into a fresh one named "<a>+<b>". Every job
// identifier of b must be unused in a, and the combined graph must satisfy
// the structural invariants; the first violation aborts the merge. Creation
// timestamps are preserved so the merged ordering stays stable.
func Merge(a, b *Workflow) (*Workflow, error) {
	merged, err := New(a.name + "+" + b.name)
	if err != nil {
		return nil, err
	}

	for k, v := range a.vars {
		merged.vars[k] = v
	}
	for k, v := range b.vars {
		merged.vars[k] = v
	}

	for _, src := range []*Workflow{a, b} {
		for _, id := range src.ListJobs() {
			job := src.jobs[id]
			if _, err := merged.AddJob(JobSpec{
				ID:        job.id,
				Inputs:    job.inputs,
				Outputs:   job.outputs,
				Template:  job.template,
				Data:      job.data,
				CreatedAt: job.createdAt,
			}); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

package workflow

import (
	"sort"

	"github.com/spatekit/spate/internal/dag"
)

// jobGraph projects the bipartite graph onto jobs: an edge j1 -> j2 exists
// iff some output of j1 is an input of j2. When extra is non-nil its paths
// are overlaid on the registry, yielding the prospective graph used to vet
// a candidate job before anything is committed.
func (w *Workflow) jobGraph(extra *Job) *dag.Graph {
	g := dag.New()
	for id := range w.jobs {
		g.AddNode(id)
	}
	if extra != nil {
		g.AddNode(extra.id)
	}

	producers := make(map[string]string, len(w.paths))
	consumers := make(map[string][]string, len(w.paths))
	for p, rec := range w.paths {
		if prod, ok := rec.producer(); ok {
			producers[p] = prod
		}
		for c := range rec.consumers {
			consumers[p] = append(consumers[p], c)
		}
	}
	if extra != nil {
		for _, p := range extra.outputs {
			producers[p] = extra.id
		}
		for _, p := range extra.inputs {
			consumers[p] = append(consumers[p], extra.id)
		}
	}

	for p, prod := range producers {
		for _, c := range consumers[p] {
			if c == prod {
				continue
			}
			// Both endpoints were added above, so AddEdge cannot fail.
			_ = g.AddEdge(prod, c)
		}
	}
	return g
}

// checkAcyclic rejects a candidate job whose addition would close a cycle.
func (w *Workflow) checkAcyclic(candidate *Job) error {
	if err := w.jobGraph(candidate).DetectCycles(); err != nil {
		return &Error{
			Kind: KindCycle,
			Msg:  "cannot add job " + candidate.id + " without creating a cycle",
			Err:  err,
		}
	}
	return nil
}

// ListJobs returns every job identifier in the canonical order: Kahn layers
// over the job-level graph, ties within a layer broken by creation
// timestamp ascending, then identifier.
func (w *Workflow) ListJobs() []string {
	layers, err := w.jobGraph(nil).Layers()
	if err != nil {
		// Invariant 5 holds after every mutation, so the graph is acyclic.
		panic("workflow: committed graph contains a cycle: " + err.Error())
	}

	ordered := make([]string, 0, len(w.jobs))
	for _, layer := range layers {
		sort.Slice(layer, func(a, b int) bool {
			ja, jb := w.jobs[layer[a]], w.jobs[layer[b]]
			if !ja.createdAt.Equal(jb.createdAt) {
				return ja.createdAt.Before(jb.createdAt)
			}
			return ja.id < jb.id
		})
		ordered = append(ordered, layer...)
	}
	return ordered
}

// JobPredecessors returns the jobs producing this job's inputs, following
// the input order, without duplicates.
func (w *Workflow) JobPredecessors(id string) ([]string, error) {
	job, err := w.GetJob(id)
	if err != nil {
		return nil, err
	}

	var preds []string
	seen := make(map[string]struct{})
	for _, p := range job.inputs {
		rec, ok := w.paths[p]
		if !ok {
			continue
		}
		if prod, has := rec.producer(); has {
			if _, dup := seen[prod]; !dup {
				seen[prod] = struct{}{}
				preds = append(preds, prod)
			}
		}
	}
	return preds, nil
}

// JobSuccessors returns the jobs consuming this job's outputs, following
// the output order with consumers of each path sorted by identifier,
// without duplicates.
func (w *Workflow) JobSuccessors(id string) ([]string, error) {
	job, err := w.GetJob(id)
	if err != nil {
		return nil, err
	}

	var succs []string
	seen := make(map[string]struct{})
	for _, p := range job.outputs {
		rec, ok := w.paths[p]
		if !ok {
			continue
		}
		var here []string
		for c := range rec.consumers {
			here = append(here, c)
		}
		sort.Strings(here)
		for _, c := range here {
			if _, dup := seen[c]; !dup {
				seen[c] = struct{}{}
				succs = append(succs, c)
			}
		}
	}
	return succs, nil
}

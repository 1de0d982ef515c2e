package workflow

import (
	"sort"
	"strings"
)

// pathRecord tracks, per registered path, the jobs touching it. The
// single-producer invariant keeps producers at size zero or one.
type pathRecord struct {
	producers map[string]struct{}
	consumers map[string]struct{}
}

func newPathRecord() *pathRecord {
	return &pathRecord{
		producers: make(map[string]struct{}),
		consumers: make(map[string]struct{}),
	}
}

func (r *pathRecord) orphaned() bool {
	return len(r.producers) == 0 && len(r.consumers) == 0
}

func (r *pathRecord) producer() (string, bool) {
	for id := range r.producers {
		return id, true
	}
	return "", false
}

// NormalizePath canonicalizes a raw path string: surrounding whitespace is
// trimmed and the result must be non-empty. Case and separators are
// preserved; the registry never touches the filesystem.
func NormalizePath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", Errorf(KindInvalidName, "invalid path %q: blank after trimming", raw)
	}
	return p, nil
}

// normalizeAll maps NormalizePath over a PathList, preserving order.
func normalizeAll(list PathList) ([]string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(list))
	for _, raw := range list {
		p, err := NormalizePath(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// HasPath reports whether the path (after normalization) is used by any job.
func (w *Workflow) HasPath(path string) bool {
	p, err := NormalizePath(path)
	if err != nil {
		return false
	}
	_, ok := w.paths[p]
	return ok
}

// ListPaths returns every registered path in insertion order.
func (w *Workflow) ListPaths() []string {
	return append([]string(nil), w.pathOrder...)
}

// NumberOfPaths returns the number of registered paths.
func (w *Workflow) NumberOfPaths() int {
	return len(w.paths)
}

// JobsOfPath returns the jobs producing and consuming the given path, each
// sorted by identifier. ok is false when the path is not part of the
// workflow.
func (w *Workflow) JobsOfPath(path string) (producers, consumers []string, ok bool) {
	p, err := NormalizePath(path)
	if err != nil {
		return nil, nil, false
	}
	rec, found := w.paths[p]
	if !found {
		return nil, nil, false
	}
	for id := range rec.producers {
		producers = append(producers, id)
	}
	for id := range rec.consumers {
		consumers = append(consumers, id)
	}
	sort.Strings(producers)
	sort.Strings(consumers)
	return producers, consumers, true
}

// registerJobPaths records a committed job in the path registry. Callers
// have already validated the single-producer invariant.
func (w *Workflow) registerJobPaths(j *Job) {
	touch := func(p string) *pathRecord {
		rec, ok := w.paths[p]
		if !ok {
			rec = newPathRecord()
			w.paths[p] = rec
			w.pathOrder = append(w.pathOrder, p)
		}
		return rec
	}

	for _, p := range j.inputs {
		touch(p).consumers[j.id] = struct{}{}
	}
	for _, p := range j.outputs {
		touch(p).producers[j.id] = struct{}{}
	}
}

// unregisterJobPaths drops a removed job from the registry, discarding any
// path left orphaned.
func (w *Workflow) unregisterJobPaths(j *Job) {
	for _, p := range j.inputs {
		if rec, ok := w.paths[p]; ok {
			delete(rec.consumers, j.id)
		}
	}
	for _, p := range j.outputs {
		if rec, ok := w.paths[p]; ok {
			delete(rec.producers, j.id)
		}
	}

	kept := w.pathOrder[:0]
	for _, p := range w.pathOrder {
		if rec, ok := w.paths[p]; ok && rec.orphaned() {
			delete(w.paths, p)
			continue
		}
		kept = append(kept, p)
	}
	w.pathOrder = kept
}

package status

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/spatekit/spate/internal/ctxlog"
	"github.com/spatekit/spate/internal/workflow"
)

// JobState classifies a job after analysis.
type JobState int

const (
	// JobCurrent means the job will not run.
	JobCurrent JobState = iota
	// JobOutdated means the job must run.
	JobOutdated
)

// PathState classifies a path after analysis.
type PathState int

const (
	// PathCurrent means the path exists and no job will touch it.
	PathCurrent PathState = iota
	// PathMissing means the path does not exist.
	PathMissing
	// PathOutdated means the path will be (re)generated by an outdated job.
	PathOutdated
)

// Report holds the analysis result for one workflow snapshot.
type Report struct {
	jobs  map[string]JobState
	paths map[string]PathState
	order []string
}

// Job returns the state of a job; absent identifiers read as current.
func (r *Report) Job(id string) JobState {
	return r.jobs[id]
}

// Path returns the state of a path; unregistered paths read as current.
func (r *Report) Path(p string) PathState {
	return r.paths[p]
}

// NumberOutdated returns how many jobs the analysis flagged.
func (r *Report) NumberOutdated() int {
	n := 0
	for _, s := range r.jobs {
		if s == JobOutdated {
			n++
		}
	}
	return n
}

// Select returns job identifiers in the canonical topological order. With
// all=false only outdated jobs are returned; staleness propagation already
// flagged their transitive descendants, so the filtered list is closed
// under descent.
func (r *Report) Select(all bool) []string {
	if all {
		return append([]string(nil), r.order...)
	}
	var ids []string
	for _, id := range r.order {
		if r.jobs[id] == JobOutdated {
			ids = append(ids, id)
		}
	}
	return ids
}

// Analyze stats every path of the workflow and computes job and path
// states. Stat failures other than not-found abort the analysis with a
// FilesystemError naming the path.
func Analyze(ctx context.Context, w *workflow.Workflow, fsys afero.Fs) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	mtimes := make(map[string]*time.Time, w.NumberOfPaths())
	for _, p := range w.ListPaths() {
		mt, err := pathMTime(fsys, p)
		if err != nil {
			return nil, err
		}
		mtimes[p] = mt
	}

	report := &Report{
		jobs:  make(map[string]JobState, w.NumberOfJobs()),
		paths: make(map[string]PathState, w.NumberOfPaths()),
		order: w.ListJobs(),
	}

	// Paths that an outdated job will create or refresh.
	regenerated := make(map[string]bool)

	for _, id := range report.order {
		job, err := w.GetJob(id)
		if err != nil {
			return nil, err
		}
		inputs, outputs := job.Inputs(), job.Outputs()

		outdated := false

		// (a) any output is absent; covers source jobs with no inputs.
		for _, p := range outputs {
			if mtimes[p] == nil {
				outdated = true
				break
			}
		}

		// (b) the newest input is strictly newer than the oldest output.
		if !outdated && len(inputs) > 0 && len(outputs) > 0 {
			var maxIn, minOut *time.Time
			for _, p := range inputs {
				if mt := mtimes[p]; mt != nil && (maxIn == nil || mt.After(*maxIn)) {
					maxIn = mt
				}
			}
			for _, p := range outputs {
				if mt := mtimes[p]; mt != nil && (minOut == nil || mt.Before(*minOut)) {
					minOut = mt
				}
			}
			if maxIn != nil && minOut != nil && minOut.Before(*maxIn) {
				outdated = true
			}
		}

		// (c) a sink job is runnable as soon as any input exists.
		if !outdated && len(outputs) == 0 {
			for _, p := range inputs {
				if mtimes[p] != nil {
					outdated = true
					break
				}
			}
		}

		// Transitive propagation: an input that an upstream outdated job
		// will regenerate taints this job too.
		if !outdated {
			for _, p := range inputs {
				if regenerated[p] {
					outdated = true
					break
				}
			}
		}

		if outdated {
			report.jobs[id] = JobOutdated
			for _, p := range outputs {
				regenerated[p] = true
			}
		} else {
			report.jobs[id] = JobCurrent
		}
	}

	for _, p := range w.ListPaths() {
		switch {
		case mtimes[p] == nil:
			report.paths[p] = PathMissing
		case regenerated[p]:
			report.paths[p] = PathOutdated
		default:
			report.paths[p] = PathCurrent
		}
	}

	logger.Debug("analyzed workflow",
		"workflow", w.Name(),
		"jobs", w.NumberOfJobs(),
		"outdated", report.NumberOutdated())
	return report, nil
}

// pathMTime returns the modification time of a path, or nil when it does
// not exist. A directory takes the newest mtime of any regular non-hidden
// file beneath it, the zero epoch when it holds none.
func pathMTime(fsys afero.Fs, path string) (*time.Time, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, &workflow.Error{
			Kind: workflow.KindFilesystem,
			Msg:  "cannot stat path",
			Path: path,
			Err:  err,
		}
	}

	if !info.IsDir() {
		mt := info.ModTime()
		return &mt, nil
	}

	latest := time.Unix(0, 0)
	err = afero.Walk(fsys, path, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if isNotFound(walkErr) {
				return nil
			}
			return &workflow.Error{
				Kind: workflow.KindFilesystem,
				Msg:  "cannot walk directory",
				Path: p,
				Err:  walkErr,
			}
		}
		name := filepath.Base(p)
		if strings.HasPrefix(name, ".") && p != path {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !fi.IsDir() && fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &latest, nil
}

func isNotFound(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist)
}

package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// MakeflowOptions configures the Makeflow exporter.
type MakeflowOptions struct {
	// All disables the outdated-only filter.
	All bool
	// Vars are Makeflow variable assignments emitted before the rules.
	Vars map[string]string
	// Render selects the template engine; process default when zero.
	Render render.Context
}

// Makeflow writes the workflow as a Makeflow script: the Make rule shape
// without a default target, one flattened body line per job. Makeflow
// needs file-level prerequisites on both sides, so jobs missing an input
// or an output are rejected.
func Makeflow(w *workflow.Workflow, rep *status.Report, opts MakeflowOptions, out io.Writer) (int, error) {
	ids := selectJobs(w, rep, opts.All)
	bodies, err := renderBodies(renderCtx(opts.Render), w, ids)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var sb strings.Builder

	names := make([]string, 0, len(opts.Vars))
	for k := range opts.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&sb, "%s=%s\n", k, opts.Vars[k])
	}

	for _, id := range ids {
		job, err := w.GetJob(id)
		if err != nil {
			return 0, err
		}
		if len(job.Inputs()) == 0 {
			return 0, fmt.Errorf("makeflow requires at least one input per job, job %q has none", id)
		}
		if len(job.Outputs()) == 0 {
			return 0, fmt.Errorf("makeflow requires at least one output per job, job %q has none", id)
		}

		fmt.Fprintf(&sb, "\n# %s\n%s: %s\n\t%s\n",
			id,
			strings.Join(job.Outputs(), " "),
			strings.Join(job.Inputs(), " "),
			flatten(bodies[id]))
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write makeflow script", Err: err}
	}
	return len(ids), nil
}

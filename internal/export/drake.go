package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// DrakeOptions configures the Drake exporter.
type DrakeOptions struct {
	// All disables the outdated-only filter.
	All bool
	// Protocol is the step protocol tag; "shell" when blank.
	Protocol string
	// Render selects the template engine; process default when zero.
	Render render.Context
}

// Drake writes the workflow as a Drake script: one step per job with the
// "outputs <- inputs [protocol]" arrow header and an indented body.
func Drake(w *workflow.Workflow, rep *status.Report, opts DrakeOptions, out io.Writer) (int, error) {
	ids := selectJobs(w, rep, opts.All)
	bodies, err := renderBodies(renderCtx(opts.Render), w, ids)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	protocol := opts.Protocol
	if protocol == "" {
		protocol = "shell"
	}

	var sb strings.Builder
	for _, id := range ids {
		job, err := w.GetJob(id)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&sb, "; %s\n%s <- %s [%s]\n\t%s\n\n",
			id,
			strings.Join(job.Outputs(), ", "),
			strings.Join(job.Inputs(), ", "),
			protocol,
			strings.Join(dedent(bodies[id], true), "\n\t"))
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write drake script", Err: err}
	}
	return len(ids), nil
}

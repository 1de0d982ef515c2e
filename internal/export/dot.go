package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// DotOptions configures the Graphviz DOT rendering.
type DotOptions struct {
	// All disables the outdated-only filter.
	All bool
	// Decorated fills nodes with status colors.
	Decorated bool
}

var jobFillColors = map[status.JobState]string{
	status.JobCurrent:  "#00ff00",
	status.JobOutdated: "#ff4000",
}

var pathFillColors = map[status.PathState]string{
	status.PathCurrent:  "#e5ffcc",
	status.PathMissing:  "#ff8c8c",
	status.PathOutdated: "#ffdc00",
}

// Dot writes the bipartite graph as Graphviz DOT text: jobs as boxes,
// paths as ellipses, with input-path -> job and job -> output-path edges.
func Dot(w *workflow.Workflow, rep *status.Report, opts DotOptions, out io.Writer) (int, error) {
	ids := selectJobs(w, rep, opts.All)
	if len(ids) == 0 {
		return 0, nil
	}

	quote := func(s string) string {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	jobNode := func(id string) string { return quote("job:" + id) }
	pathNode := func(p string) string { return quote("path:" + p) }

	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %s {\n", quote(w.Name()))

	seenPaths := make(map[string]bool)
	writePath := func(p string) {
		if seenPaths[p] {
			return
		}
		seenPaths[p] = true
		attrs := fmt.Sprintf("label=%s, shape=ellipse", quote(p))
		if opts.Decorated {
			attrs += fmt.Sprintf(", style=filled, fillcolor=%s", quote(pathFillColors[rep.Path(p)]))
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", pathNode(p), attrs)
	}

	for _, id := range ids {
		job, err := w.GetJob(id)
		if err != nil {
			return 0, err
		}

		attrs := fmt.Sprintf("label=%s, shape=box", quote(id))
		if opts.Decorated {
			attrs += fmt.Sprintf(", style=filled, fillcolor=%s", quote(jobFillColors[rep.Job(id)]))
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", jobNode(id), attrs)

		for _, p := range job.Inputs() {
			writePath(p)
			fmt.Fprintf(&sb, "  %s -> %s;\n", pathNode(p), jobNode(id))
		}
		for _, p := range job.Outputs() {
			writePath(p)
			fmt.Fprintf(&sb, "  %s -> %s;\n", jobNode(id), pathNode(p))
		}
	}
	sb.WriteString("}\n")

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write dot graph", Err: err}
	}
	return len(ids), nil
}

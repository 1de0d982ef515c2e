package export

import (
	"strings"

	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// selectJobs resolves the job list an exporter walks: the canonical order,
// cut down to the outdated set unless all is requested. A nil report is
// accepted only for unfiltered exports.
func selectJobs(w *workflow.Workflow, rep *status.Report, all bool) []string {
	if rep == nil {
		return w.ListJobs()
	}
	return rep.Select(all)
}

// renderCtx fills in the process default engine for a zero-valued context.
func renderCtx(ctx render.Context) render.Context {
	if ctx.Engine == nil {
		return render.Default()
	}
	return ctx
}

// renderBodies renders every selected job up front so that no partial
// script is ever emitted on a template fault.
func renderBodies(ctx render.Context, w *workflow.Workflow, ids []string) (map[string]string, error) {
	bodies := make(map[string]string, len(ids))
	for _, id := range ids {
		body, err := render.Job(ctx, w, id)
		if err != nil {
			return nil, err
		}
		bodies[id] = body
	}
	return bodies, nil
}

// dedent splits a body into lines stripped of their common leading
// whitespace, dropping leading and trailing blank lines. With ignoreEmpty
// set, interior blank lines are dropped too.
func dedent(text string, ignoreEmpty bool) []string {
	var lines []string
	margin := -1

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !ignoreEmpty {
				lines = append(lines, line)
			}
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
		lines = append(lines, line)
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if margin > 0 {
		for i, line := range lines {
			if line != "" {
				lines[i] = line[margin:]
			}
		}
	}
	return lines
}

// flatten collapses a body to a single line, joining non-blank lines with
// semicolons, for targets that only accept one-line commands.
func flatten(text string) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "; ")
}

package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/workflow"
)

// MakefileOptions configures the Makefile exporter.
type MakefileOptions struct {
	// Shell sets the SHELL assignment; /bin/bash when blank.
	Shell string
	// Vars are extra Makefile variables, merged with the workflow's own
	// (overriding a same-named one); all are written sorted by name.
	Vars map[string]string
	// Render selects the template engine; process default when zero.
	Render render.Context
}

// Makefile writes the workflow as a Makefile: one rule per job with its
// outputs as targets and inputs as prerequisites, plus a phony default
// target depending on every terminal output. Make resolves outdatedness
// itself, so no filtering is applied. The number of jobs written is
// returned; when that is zero nothing is written.
func Makefile(w *workflow.Workflow, opts MakefileOptions, out io.Writer) (int, error) {
	ids := selectJobs(w, nil, true)
	bodies, err := renderBodies(renderCtx(opts.Render), w, ids)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	allPaths := make(map[string]bool)
	var terminal []string
	var rules []string

	for _, id := range ids {
		job, err := w.GetJob(id)
		if err != nil {
			return 0, err
		}
		inputs, outputs := job.Inputs(), job.Outputs()

		// Make cannot express a rule without a target.
		if len(outputs) == 0 {
			return 0, fmt.Errorf("make requires at least one output per job, job %q has none", id)
		}
		for _, p := range append(append([]string{}, inputs...), outputs...) {
			allPaths[p] = true
			if strings.ContainsRune(p, ' ') {
				return 0, fmt.Errorf("make cannot handle spaces in path names: %q", p)
			}
		}

		for _, p := range outputs {
			if _, consumers, ok := w.JobsOfPath(p); ok && len(consumers) == 0 {
				terminal = append(terminal, p)
			}
		}

		recipe := dedent(bodies[id], true)
		for i, line := range recipe {
			recipe[i] = "@" + line
		}
		rules = append(rules, fmt.Sprintf("\n# %s\n%s: %s\n\t%s\n",
			id,
			strings.Join(job.Outputs(), " "),
			strings.Join(job.Inputs(), " "),
			strings.Join(recipe, "\n\t")))
	}

	shell := opts.Shell
	if shell == "" {
		shell = "/bin/bash"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nSHELL := %s\n", shell)

	vars := make(map[string]string)
	for k, v := range w.Vars() {
		vars[k] = fmt.Sprint(v)
	}
	for k, v := range opts.Vars {
		vars[k] = v
	}
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&sb, "%s = %s\n", k, vars[k])
	}

	// Pick a default-target name no path collides with.
	mainTarget := "all"
	for k := 1; allPaths[mainTarget]; k++ {
		mainTarget = fmt.Sprintf("all_%d", k)
	}

	fmt.Fprintf(&sb, "\n.PHONY: %s\n", mainTarget)
	fmt.Fprintf(&sb, "%s: %s\n", mainTarget, strings.Join(terminal, " "))

	for _, rule := range rules {
		sb.WriteString(rule)
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write makefile", Err: err}
	}
	return len(ids), nil
}

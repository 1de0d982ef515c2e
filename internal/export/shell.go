package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// ShellOptions configures the plain shell script exporter.
type ShellOptions struct {
	// All disables the outdated-only filter.
	All bool
	// Shell selects the shebang interpreter; /bin/bash when blank.
	Shell string
	// ShellArgs are prologue lines inserted after the shebang. When nil,
	// "set -e" is emitted so the first failing job aborts the run.
	ShellArgs []string
	// Render selects the template engine; process default when zero.
	Render render.Context
}

// Shell writes the workflow as a sequential shell script, jobs separated
// by "# <id>" comments in topological order. It returns the number of jobs
// exported; when that is zero nothing is written.
func Shell(w *workflow.Workflow, rep *status.Report, opts ShellOptions, out io.Writer) (int, error) {
	ids := selectJobs(w, rep, opts.All)
	bodies, err := renderBodies(renderCtx(opts.Render), w, ids)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	shell := opts.Shell
	if shell == "" {
		shell = "/bin/bash"
	}
	args := opts.ShellArgs
	if args == nil {
		args = []string{"set -e"}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "#!%s\n", strings.TrimSpace(shell))
	if len(args) > 0 {
		sb.WriteString("\n")
		for _, arg := range args {
			fmt.Fprintf(&sb, "%s\n", strings.TrimSpace(arg))
		}
	}

	for _, id := range ids {
		body := strings.Join(dedent(bodies[id], false), "\n")
		fmt.Fprintf(&sb, "\n# %s\n%s\n", id, body)
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write shell script", Err: err}
	}
	return len(ids), nil
}

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

// sbatchLongNames maps single-letter sbatch flags to their long form, so
// callers can pass either spelling and the driver script stays readable.
var sbatchLongNames = map[string]string{
	"a": "array",
	"A": "account",
	"B": "extra-node-info",
	"C": "constraint",
	"c": "cpus-per-task",
	"d": "dependency",
	"D": "workdir",
	"e": "error",
	"F": "nodefile",
	"H": "hold",
	"I": "immediate",
	"i": "input",
	"J": "job-name",
	"k": "no-kill",
	"L": "licenses",
	"M": "clusters",
	"m": "distribution",
	"N": "nodes",
	"n": "ntasks",
	"O": "overcommit",
	"o": "output",
	"p": "partition",
	"Q": "quiet",
	"s": "share",
	"S": "core-spec",
	"t": "time",
	"w": "nodelist",
	"x": "exclude",
}

// sbatch options spelled with underscores rather than dashes.
var sbatchUnderscoreNames = map[string]bool{
	"cpu_bind": true,
	"mem_bind": true,
}

func sbatchFlagName(flag string) string {
	if sbatchUnderscoreNames[flag] {
		return flag
	}
	if long, ok := sbatchLongNames[flag]; ok {
		return long
	}
	return strings.ReplaceAll(flag, "_", "-")
}

// SlurmOptions configures the SLURM sbatch exporter.
type SlurmOptions struct {
	// All disables the outdated-only filter.
	All bool
	// SbatchArgs are options for the driver script's #SBATCH prologue;
	// job-name defaults to the workflow name.
	SbatchArgs map[string]string
	// Render selects the template engine; process default when zero.
	Render render.Context
}

// Slurm writes a driver script that submits one sbatch job per workflow
// job in topological order, captures each returned job ID, and wires
// --dependency=afterok arguments from the captured IDs of the
// predecessors.
func Slurm(w *workflow.Workflow, rep *status.Report, opts SlurmOptions, out io.Writer) (int, error) {
	ids := selectJobs(w, rep, opts.All)
	bodies, err := renderBodies(renderCtx(opts.Render), w, ids)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	args := map[string]string{"job-name": w.Name()}
	for k, v := range opts.SbatchArgs {
		if strings.TrimSpace(v) == "" {
			continue
		}
		args[sbatchFlagName(k)] = v
	}
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("#!/bin/bash\n")
	for _, k := range names {
		fmt.Fprintf(&sb, "#SBATCH --%s %s\n", k, args[k])
	}

	exported := make(map[string]bool, len(ids))
	for _, id := range ids {
		exported[id] = true
	}

	jobIdx := make(map[string]int, len(ids))
	for idx, id := range ids {
		jobIdx[id] = idx + 1

		preds, err := w.JobPredecessors(id)
		if err != nil {
			return 0, err
		}
		var deps []string
		for _, pred := range preds {
			// A predecessor outside the selection was not submitted, so
			// there is no job ID to wait on.
			if exported[pred] {
				deps = append(deps, fmt.Sprintf(":${JOB_%d_ID}", jobIdx[pred]))
			}
		}
		dependency := ""
		if len(deps) > 0 {
			dependency = " --dependency=afterok" + strings.Join(deps, "")
		}

		body := strings.Join(dedent(bodies[id], false), "\n")
		fmt.Fprintf(&sb,
			"\n# %s\nJOB_%d_ID=$(sbatch%s <<'EOB'\n#!/bin/bash\n%s\nEOB\n); JOB_%d_ID=${JOB_%d_ID##* }\n",
			id, jobIdx[id], dependency, body, jobIdx[id], jobIdx[id])
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write sbatch script", Err: err}
	}
	return len(ids), nil
}

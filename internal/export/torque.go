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

// TorqueOptions configures the TORQUE/PBS array exporter.
type TorqueOptions struct {
	// All disables the outdated-only filter.
	All bool
	// JobsFileName is the name the driver script uses to locate the
	// commands file at run time.
	JobsFileName string
	// QsubArgs are options for the driver script's #PBS prologue. The job
	// name defaults to the workflow name; "cwd" translates to a
	// cd-to-submission-dir line since PBS has no such flag.
	QsubArgs map[string]string
	// Render selects the template engine; process default when zero.
	Render render.Context
}

// Torque writes a TORQUE/PBS job array: one flattened command line per job
// into cmds, and a #PBS array driver script into driver that picks its line
// by ${PBS_ARRAYID}. Array members run without dependency wiring; the
// driver records that limitation instead of reordering anything.
func Torque(w *workflow.Workflow, rep *status.Report, opts TorqueOptions, cmds, driver io.Writer) (int, error) {
	ids := selectJobs(w, rep, opts.All)
	bodies, err := renderBodies(renderCtx(opts.Render), w, ids)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var cmdLines strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&cmdLines, "%s\n", flatten(bodies[id]))
	}

	jobsFile := opts.JobsFileName
	if jobsFile == "" {
		jobsFile = w.Name() + ".torque_jobs"
	}

	args := map[string]string{
		"N": w.Name(),
		"o": jobsFile + "_${PBS_JOBID}_${PBS_ARRAYID}.out",
		"e": jobsFile + "_${PBS_JOBID}_${PBS_ARRAYID}.err",
	}
	cwd := ""
	for k, v := range opts.QsubArgs {
		if k == "cwd" {
			cwd = "\ncd ${PBS_O_WORKDIR}"
			continue
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		args[k] = v
	}
	args["t"] = fmt.Sprintf("1-%d", len(ids))
	if len(args["N"]) > 15 {
		args["N"] = args["N"][:15] // qsub caps job names at 15 characters
	}

	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)

	var pbs []string
	for _, k := range names {
		pbs = append(pbs, fmt.Sprintf("#PBS -%s %s", k, args[k]))
	}

	script := fmt.Sprintf(`#!/bin/bash
%s
# NOTE: dependencies between jobs are not expressed by this exporter; the
# array members run independently.%s
_ALL_JOBS="%s"
_CURRENT_JOB="$(awk "NR==${PBS_ARRAYID}" ${_ALL_JOBS})"

echo ${_CURRENT_JOB}
echo

eval ${_CURRENT_JOB}
`, strings.Join(pbs, "\n"), cwd, jobsFile)

	if _, err := io.WriteString(cmds, cmdLines.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write torque commands file", Err: err}
	}
	if _, err := io.WriteString(driver, script); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write torque driver script", Err: err}
	}
	return len(ids), nil
}

package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// EchoOptions configures the terminal listing.
type EchoOptions struct {
	// All disables the outdated-only filter.
	All bool
	// Decorated adds status markers to job lines: '*' outdated, '.' current.
	Decorated bool
	// Colorized adds ANSI colors; only valid together with Decorated.
	Colorized bool
}

// Echo writes one stanza per job in list order: inputs prefixed with '<',
// the identifier line, outputs prefixed with '>', then a blank line; it
// concludes with a total line. The number of jobs printed is returned.
func Echo(w *workflow.Workflow, rep *status.Report, opts EchoOptions, out io.Writer) (int, error) {
	if opts.Colorized && !opts.Decorated {
		return 0, errors.New("colorized echo requires decoration")
	}

	jobLine := func(id string, state status.JobState) string {
		if !opts.Decorated {
			return id
		}
		marker := ". "
		if state == status.JobOutdated {
			marker = "* "
		}
		return marker + id
	}
	pathLine := func(p string, isInput bool) string {
		if isInput {
			return "< " + p
		}
		return "> " + p
	}

	if opts.Colorized {
		jobColors := map[status.JobState]*color.Color{
			status.JobCurrent:  color.New(color.FgGreen),
			status.JobOutdated: color.New(color.FgYellow),
		}
		pathColors := map[status.PathState]*color.Color{
			status.PathCurrent:  color.New(color.Faint, color.FgGreen),
			status.PathMissing:  color.New(color.Faint, color.FgRed),
			status.PathOutdated: color.New(color.Faint, color.FgYellow),
		}
		for _, c := range jobColors {
			c.EnableColor()
		}
		for _, c := range pathColors {
			c.EnableColor()
		}

		rawJobLine, rawPathLine := jobLine, pathLine
		jobLine = func(id string, state status.JobState) string {
			return jobColors[state].Sprint(rawJobLine(id, state))
		}
		pathLine = func(p string, isInput bool) string {
			return pathColors[rep.Path(p)].Sprint(rawPathLine(p, isInput))
		}
	}

	ids := rep.Select(opts.All)

	var sb strings.Builder
	for _, id := range ids {
		job, err := w.GetJob(id)
		if err != nil {
			return 0, err
		}
		for _, p := range job.Inputs() {
			sb.WriteString(pathLine(p, true) + "\n")
		}
		sb.WriteString(jobLine(id, rep.Job(id)) + "\n")
		for _, p := range job.Outputs() {
			sb.WriteString(pathLine(p, false) + "\n")
		}
		sb.WriteString("\n")
	}

	plural := func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	}
	if opts.All {
		fmt.Fprintf(&sb, "total: %d job%s\n", len(ids), plural(len(ids)))
	} else {
		fmt.Fprintf(&sb, "total: %d outdated job%s (out of %d)\n",
			len(ids), plural(len(ids)), w.NumberOfJobs())
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return 0, &workflow.Error{Kind: workflow.KindFilesystem, Msg: "cannot write listing", Err: err}
	}
	return len(ids), nil
}

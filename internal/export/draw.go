package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/spatekit/spate/internal/ctxlog"
	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/workflow"
)

// DrawOptions configures the rendered diagram.
type DrawOptions struct {
	// All disables the outdated-only filter.
	All bool
	// Decorated fills nodes with status colors.
	Decorated bool
	// Prog is the external layout program; "dot" when blank.
	Prog string
	// Format is the output format flag passed as -T<format>; "svg" when blank.
	Format string
}

// Draw renders the workflow diagram by piping the DOT text through an
// external Graphviz layout program, writing the program's stdout to out.
func Draw(ctx context.Context, w *workflow.Workflow, rep *status.Report, opts DrawOptions, out io.Writer) error {
	logger := ctxlog.FromContext(ctx)

	var dotText bytes.Buffer
	n, err := Dot(w, rep, DotOptions{All: opts.All, Decorated: opts.Decorated}, &dotText)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	prog := opts.Prog
	if prog == "" {
		prog = "dot"
	}
	format := opts.Format
	if format == "" {
		format = "svg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, prog, "-T"+format)
	cmd.Stdin = &dotText
	cmd.Stdout = out
	cmd.Stderr = &stderr

	logger.Debug("running layout program", "prog", prog, "format", format, "jobs", n)
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("layout program %s failed: %s: %w", prog, detail, err)
		}
		return fmt.Errorf("layout program %s failed: %w", prog, err)
	}
	return nil
}

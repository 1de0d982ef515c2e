package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spatekit/spate/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usage(output io.Writer) {
	fmt.Fprint(output, `
spate - composition and export toolkit for file-based workflows.

Usage:
  spate <command> [options] <workflow-file> ...

Commands:
  echo      List jobs, their paths, and their status.
  export    Render the workflow for an execution environment.
  draw      Render the workflow diagram via an external layout program.
  convert   Load a workflow and save it under another name or format.

Workflow files ending in .hcl are parsed as grid definitions; everything
else is read as a serialized document (.yaml/.json, optionally .gz).

Run 'spate <command> -h' for the options of one command.
`)
}

// exportTargets enumerates the accepted -to values.
var exportTargets = map[string]bool{
	"shell":    true,
	"makefile": true,
	"makeflow": true,
	"drake":    true,
	"slurm":    true,
	"torque":   true,
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly, or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "--help" {
		usage(output)
		return nil, true, nil
	}

	command := args[0]
	switch command {
	case "echo", "export", "draw", "convert":
	default:
		usage(output)
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", command)}
	}

	flagSet := flag.NewFlagSet("spate "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)

	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	engineFlag := flagSet.String("engine", "", "Template engine override. Options: 'simple' or 'mustache'.")

	var allFlag, plainFlag, colorFlag *bool
	var toFlag, shellFlag, outFlag, progFlag, formatFlag *string

	switch command {
	case "echo":
		allFlag = flagSet.Bool("all", false, "List all jobs, not only the outdated ones.")
		plainFlag = flagSet.Bool("plain", false, "Disable status markers on job lines.")
		colorFlag = flagSet.Bool("color", false, "Colorize the listing (requires markers).")
	case "export":
		allFlag = flagSet.Bool("all", false, "Export all jobs, not only the outdated ones.")
		toFlag = flagSet.String("to", "", "Target format: shell, makefile, makeflow, drake, slurm, or torque.")
		shellFlag = flagSet.String("shell", "", "Shell used by the generated script (default /bin/bash).")
		outFlag = flagSet.String("o", "", "Output file; stdout when omitted. Required for torque (used as prefix).")
	case "draw":
		allFlag = flagSet.Bool("all", false, "Draw all jobs, not only the outdated ones.")
		plainFlag = flagSet.Bool("plain", false, "Disable status coloring of the diagram nodes.")
		progFlag = flagSet.String("prog", "dot", "Layout program piped the graph text.")
		formatFlag = flagSet.String("format", "svg", "Output format passed to the layout program.")
		outFlag = flagSet.String("o", "", "Output file; stdout when omitted.")
	case "convert":
		// positional arguments only
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *engineFlag != "" && *engineFlag != "simple" && *engineFlag != "mustache" {
		return nil, false, &ExitError{Code: 2, Message: "invalid engine: must be 'simple' or 'mustache'"}
	}

	cfg := &app.Config{
		Command:   command,
		Engine:    *engineFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	}
	if allFlag != nil {
		cfg.All = *allFlag
	}
	if plainFlag != nil {
		cfg.Plain = *plainFlag
	}
	if colorFlag != nil {
		cfg.Color = *colorFlag
	}
	if shellFlag != nil {
		cfg.Shell = *shellFlag
	}
	if outFlag != nil {
		cfg.Output = *outFlag
	}
	if progFlag != nil {
		cfg.Prog = *progFlag
	}
	if formatFlag != nil {
		cfg.Format = *formatFlag
	}

	switch command {
	case "convert":
		if flagSet.NArg() != 2 {
			return nil, false, &ExitError{Code: 2, Message: "convert takes exactly two arguments: <input> <output>"}
		}
		cfg.Input = flagSet.Arg(0)
		cfg.Output = flagSet.Arg(1)
	default:
		if flagSet.NArg() != 1 {
			return nil, false, &ExitError{Code: 2, Message: command + " takes exactly one <workflow-file> argument"}
		}
		cfg.Input = flagSet.Arg(0)
	}

	if command == "echo" && cfg.Color && cfg.Plain {
		return nil, false, &ExitError{Code: 2, Message: "-color requires markers; drop -plain"}
	}
	if command == "export" {
		cfg.Target = strings.ToLower(*toFlag)
		if !exportTargets[cfg.Target] {
			return nil, false, &ExitError{Code: 2, Message: "invalid -to target: must be shell, makefile, makeflow, drake, slurm, or torque"}
		}
		if cfg.Target == "torque" && cfg.Output == "" {
			return nil, false, &ExitError{Code: 2, Message: "torque export writes two files; -o <prefix> is required"}
		}
	}

	slog.Debug("CLI parameter validation complete.", "config", cfg)
	return cfg, false, nil
}

package app

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/spatekit/spate/internal/ctxlog"
	"github.com/spatekit/spate/internal/export"
	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/status"
	"github.com/spatekit/spate/internal/wire"
	"github.com/spatekit/spate/internal/workflow"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if cfg.Command == "convert" {
		return a.runConvert(ctx, cfg)
	}

	w, rctx, err := a.loadWorkflow(ctx, cfg.Input)
	if err != nil {
		return err
	}
	if cfg.Engine != "" {
		engine, err := render.EngineByName(cfg.Engine)
		if err != nil {
			return err
		}
		rctx = render.Context{Engine: engine}
	}

	// The Makefile target and unfiltered script exports never consult job
	// status, so they must not fail on an unreadable path either.
	var rep *status.Report
	needStatus := cfg.Command != "export" || (!cfg.All && cfg.Target != "makefile")
	if needStatus {
		rep, err = status.Analyze(ctx, w, a.fs)
		if err != nil {
			return err
		}
	}

	switch cfg.Command {
	case "echo":
		_, err := export.Echo(w, rep, export.EchoOptions{
			All:       cfg.All,
			Decorated: !cfg.Plain,
			Colorized: cfg.Color,
		}, a.outW)
		return err

	case "draw":
		return a.runDraw(ctx, cfg, w, rep)

	case "export":
		return a.runExport(ctx, cfg, w, rep, rctx)

	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func (a *App) runConvert(ctx context.Context, cfg *Config) error {
	w, _, err := a.loadWorkflow(ctx, cfg.Input)
	if err != nil {
		return err
	}
	return wire.Save(a.fs, w, cfg.Output)
}

func (a *App) runDraw(ctx context.Context, cfg *Config, w *workflow.Workflow, rep *status.Report) error {
	opts := export.DrawOptions{
		All:       cfg.All,
		Decorated: !cfg.Plain,
		Prog:      cfg.Prog,
		Format:    cfg.Format,
	}
	if cfg.Output == "" {
		return export.Draw(ctx, w, rep, opts, a.outW)
	}

	var buf bytes.Buffer
	if err := export.Draw(ctx, w, rep, opts, &buf); err != nil {
		return err
	}
	if buf.Len() == 0 {
		return nil
	}
	return afero.WriteFile(a.fs, cfg.Output, buf.Bytes(), 0o644)
}

func (a *App) runExport(ctx context.Context, cfg *Config, w *workflow.Workflow, rep *status.Report, rctx render.Context) error {
	logger := ctxlog.FromContext(ctx)

	if cfg.Target == "torque" {
		return a.runTorque(ctx, cfg, w, rep, rctx)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if cfg.Output == "" {
		out = a.outW
	}

	var n int
	var err error
	switch cfg.Target {
	case "shell":
		n, err = export.Shell(w, rep, export.ShellOptions{
			All: cfg.All, Shell: cfg.Shell, Render: rctx,
		}, out)
	case "makefile":
		n, err = export.Makefile(w, export.MakefileOptions{
			Shell: cfg.Shell, Render: rctx,
		}, out)
	case "makeflow":
		n, err = export.Makeflow(w, rep, export.MakeflowOptions{
			All: cfg.All, Render: rctx,
		}, out)
	case "drake":
		n, err = export.Drake(w, rep, export.DrakeOptions{
			All: cfg.All, Render: rctx,
		}, out)
	case "slurm":
		n, err = export.Slurm(w, rep, export.SlurmOptions{
			All: cfg.All, Render: rctx,
		}, out)
	default:
		return fmt.Errorf("unknown export target %q", cfg.Target)
	}
	if err != nil {
		return err
	}

	logger.Debug("export finished", "target", cfg.Target, "jobs", n)
	if cfg.Output == "" || n == 0 {
		return nil
	}
	return afero.WriteFile(a.fs, cfg.Output, buf.Bytes(), filePerm(cfg.Target))
}

func (a *App) runTorque(ctx context.Context, cfg *Config, w *workflow.Workflow, rep *status.Report, rctx render.Context) error {
	logger := ctxlog.FromContext(ctx)

	jobsFile := cfg.Output + ".torque_jobs"
	arrayFile := cfg.Output + ".torque_array"

	var cmds, driver bytes.Buffer
	n, err := export.Torque(w, rep, export.TorqueOptions{
		All: cfg.All, JobsFileName: jobsFile, Render: rctx,
	}, &cmds, &driver)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	if err := afero.WriteFile(a.fs, jobsFile, cmds.Bytes(), 0o644); err != nil {
		return err
	}
	if err := afero.WriteFile(a.fs, arrayFile, driver.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Debug("torque export finished", "jobs", n, "cmds", jobsFile, "driver", arrayFile)
	return nil
}

package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/spatekit/spate/internal/gridfile"
	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/wire"
	"github.com/spatekit/spate/internal/workflow"
)

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	fs     afero.Fs
}

// NewApp constructs the application with its own isolated logger. The
// filesystem is the real one; tests swap it with WithFs.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		errW:   errW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, errW),
		fs:     afero.NewOsFs(),
	}
}

// WithFs replaces the filesystem. Primarily for testing.
func (a *App) WithFs(fsys afero.Fs) *App {
	a.fs = fsys
	return a
}

// loadWorkflow reads the input by its extension: .hcl parses as a grid
// definition carrying its own engine choice, anything else as a serialized
// document rendered with the process default engine.
func (a *App) loadWorkflow(ctx context.Context, path string) (*workflow.Workflow, render.Context, error) {
	if strings.HasSuffix(strings.ToLower(path), ".hcl") {
		return gridfile.Load(ctx, a.fs, path)
	}
	w, err := wire.Load(a.fs, path)
	if err != nil {
		return nil, render.Context{}, err
	}
	return w, render.Default(), nil
}

// filePerm picks the mode for a written artifact: executable for scripts
// meant to be run directly.
func filePerm(target string) os.FileMode {
	switch target {
	case "shell", "slurm":
		return 0o755
	default:
		return 0o644
	}
}

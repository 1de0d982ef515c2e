package gridfile

import (
	"context"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"

	"github.com/spatekit/spate/internal/ctxlog"
	"github.com/spatekit/spate/internal/render"
	"github.com/spatekit/spate/internal/workflow"
)

// Load reads a grid file and builds the workflow it declares, together
// with the rendering context it selects. Jobs are added in file order, so
// every structural invariant is enforced exactly as for programmatic
// construction.
func Load(ctx context.Context, fsys afero.Fs, path string) (*workflow.Workflow, render.Context, error) {
	src, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, render.Context{}, &workflow.Error{
			Kind: workflow.KindFilesystem, Msg: "cannot read grid file", Path: path, Err: err,
		}
	}
	return Parse(ctx, src, path)
}

// Parse builds a workflow from grid file source text. The filename only
// labels diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*workflow.Workflow, render.Context, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, render.Context{}, serializationError(filename, diags)
	}

	var cfg gridFile
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, render.Context{}, serializationError(filename, diags)
	}
	if cfg.Workflow == nil {
		return nil, render.Context{}, &workflow.Error{
			Kind: workflow.KindSerialization,
			Msg:  "grid file declares no workflow block",
			Path: filename,
		}
	}

	engine, err := render.EngineByName(cfg.Workflow.Engine)
	if err != nil {
		return nil, render.Context{}, err
	}
	rctx := render.Context{Engine: engine}

	w, err := workflow.New(cfg.Workflow.Name)
	if err != nil {
		return nil, render.Context{}, err
	}

	if vars, err := ctyToDataMap(cfg.Workflow.Data); err != nil {
		return nil, render.Context{}, serializationError(filename, err)
	} else if len(vars) > 0 {
		w.SetVars(vars)
	}

	for _, block := range cfg.Jobs {
		data, err := ctyToDataMap(block.Data)
		if err != nil {
			return nil, render.Context{}, serializationError(filename, err)
		}
		if _, err := w.AddJob(workflow.JobSpec{
			ID:       block.ID,
			Inputs:   workflow.Paths(block.Inputs...),
			Outputs:  workflow.Paths(block.Outputs...),
			Template: block.Template,
			Data:     data,
		}); err != nil {
			return nil, render.Context{}, err
		}
	}

	logger.Debug("loaded grid file",
		"file", filename, "workflow", w.Name(), "jobs", w.NumberOfJobs())
	return w, rctx, nil
}

func serializationError(filename string, err error) error {
	return &workflow.Error{
		Kind: workflow.KindSerialization,
		Msg:  "invalid grid file",
		Path: filename,
		Err:  err,
	}
}

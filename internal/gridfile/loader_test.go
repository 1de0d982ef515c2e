package gridfile

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spatekit/spate/internal/workflow"
)

const exampleGrid = `
workflow "assembly" {
  engine = "mustache"
  data = {
    release = "v4"
  }
}

job "x" {
  inputs   = ["A"]
  outputs  = ["B", "C"]
  template = "cp {{INPUT}} {{OUTPUT0}}"

  data = {
    threads = 4
    tags    = ["fast", "io"]
  }
}

job "y" {
  inputs  = ["A", "C"]
  outputs = ["D"]
}
`

func TestParse(t *testing.T) {
	t.Run("full grid", func(t *testing.T) {
		w, rctx, err := Parse(context.Background(), []byte(exampleGrid), "grid.hcl")
		require.NoError(t, err)

		assert.Equal(t, "assembly", w.Name())
		assert.Equal(t, "mustache", rctx.Engine.Name())
		assert.Equal(t, 2, w.NumberOfJobs())
		assert.Equal(t, 4, w.NumberOfPaths())
		assert.Equal(t, []string{"x", "y"}, w.ListJobs())
		assert.Equal(t, map[string]any{"release": "v4"}, w.Vars())

		job, err := w.GetJob("x")
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, job.Inputs())
		assert.Equal(t, []string{"B", "C"}, job.Outputs())
		assert.Equal(t, "cp {{INPUT}} {{OUTPUT0}}", job.Template())
		assert.Equal(t, map[string]any{
			"threads": 4,
			"tags":    []any{"fast", "io"},
		}, job.Data())

		job, err = w.GetJob("y")
		require.NoError(t, err)
		assert.True(t, job.Abstract())
		assert.Nil(t, job.Data())
	})

	t.Run("engine defaults to mustache", func(t *testing.T) {
		src := `
workflow "wf" {}
job "x" { outputs = ["A"] }
`
		_, rctx, err := Parse(context.Background(), []byte(src), "grid.hcl")
		require.NoError(t, err)
		assert.Equal(t, "mustache", rctx.Engine.Name())
	})

	t.Run("simple engine is selectable", func(t *testing.T) {
		src := `
workflow "wf" { engine = "simple" }
job "x" { outputs = ["A"] }
`
		_, rctx, err := Parse(context.Background(), []byte(src), "grid.hcl")
		require.NoError(t, err)
		assert.Equal(t, "simple", rctx.Engine.Name())
	})

	t.Run("syntax errors surface as serialization faults", func(t *testing.T) {
		_, _, err := Parse(context.Background(), []byte(`workflow "wf" {`), "grid.hcl")
		require.Error(t, err)
		assert.True(t, workflow.HasKind(err, workflow.KindSerialization))
	})

	t.Run("missing workflow block is rejected", func(t *testing.T) {
		_, _, err := Parse(context.Background(), []byte(`job "x" { outputs = ["A"] }`), "grid.hcl")
		require.Error(t, err)
		assert.True(t, workflow.HasKind(err, workflow.KindSerialization))
	})

	t.Run("unknown engine is rejected", func(t *testing.T) {
		src := `
workflow "wf" { engine = "jinja" }
`
		_, _, err := Parse(context.Background(), []byte(src), "grid.hcl")
		require.Error(t, err)
		assert.True(t, workflow.HasKind(err, workflow.KindInvalidName))
	})

	t.Run("structural invariants still apply", func(t *testing.T) {
		src := `
workflow "wf" {}
job "a" { outputs = ["X"] }
job "b" { outputs = ["X"] }
`
		_, _, err := Parse(context.Background(), []byte(src), "grid.hcl")
		require.Error(t, err)
		assert.True(t, workflow.HasKind(err, workflow.KindDoubleProducer))
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads from the filesystem", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(exampleGrid), 0o644))

		w, _, err := Load(context.Background(), fsys, "grid.hcl")
		require.NoError(t, err)
		assert.Equal(t, "assembly", w.Name())
	})

	t.Run("missing file is a filesystem fault", func(t *testing.T) {
		_, _, err := Load(context.Background(), afero.NewMemMapFs(), "nope.hcl")
		require.Error(t, err)
		assert.True(t, workflow.HasKind(err, workflow.KindFilesystem))
	})
}

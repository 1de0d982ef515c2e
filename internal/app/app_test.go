package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridSource = `
workflow "assembly" {}

job "x" {
  inputs   = ["A"]
  outputs  = ["B", "C"]
  template = "cp {{INPUT}} {{OUTPUT0}}"
}

job "y" {
  inputs   = ["A", "C"]
  outputs  = ["D"]
  template = "cat {{#INPUTS}}{{.}} {{/INPUTS}}> {{OUTPUT}}"
}
`

func newTestApp(t *testing.T, cfg *Config) (*App, *bytes.Buffer, afero.Fs) {
	t.Helper()
	var out, errOut bytes.Buffer
	fsys := afero.NewMemMapFs()
	a := NewApp(&out, &errOut, cfg).WithFs(fsys)
	return a, &out, fsys
}

func TestRunEcho(t *testing.T) {
	cfg := &Config{Command: "echo", Input: "grid.hcl"}
	a, out, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(gridSource), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))

	text := out.String()
	assert.Contains(t, text, "< A\n* x\n> B\n> C\n")
	assert.Contains(t, text, "total: 2 outdated jobs (out of 2)\n")
}

func TestRunExportShellToStdout(t *testing.T) {
	cfg := &Config{Command: "export", Target: "shell", Input: "grid.hcl"}
	a, out, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(gridSource), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))

	text := out.String()
	assert.Contains(t, text, "#!/bin/bash\n")
	assert.Contains(t, text, "# x\ncp A B\n")
	assert.Contains(t, text, "# y\ncat A C > D\n")
}

func TestRunExportShellToFile(t *testing.T) {
	cfg := &Config{Command: "export", Target: "shell", Input: "grid.hcl", Output: "run.sh"}
	a, out, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(gridSource), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))
	assert.Zero(t, out.Len())

	script, err := afero.ReadFile(fsys, "run.sh")
	require.NoError(t, err)
	assert.Contains(t, string(script), "set -e\n")
}

func TestRunExportTorqueWritesTwoFiles(t *testing.T) {
	cfg := &Config{Command: "export", Target: "torque", Input: "grid.hcl", Output: "assembly"}
	a, _, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(gridSource), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))

	cmds, err := afero.ReadFile(fsys, "assembly.torque_jobs")
	require.NoError(t, err)
	assert.Equal(t, "cp A B\ncat A C > D\n", string(cmds))

	driver, err := afero.ReadFile(fsys, "assembly.torque_array")
	require.NoError(t, err)
	assert.Contains(t, string(driver), "#PBS -t 1-2\n")
}

func TestRunConvert(t *testing.T) {
	cfg := &Config{Command: "convert", Input: "grid.hcl", Output: "wf.yaml"}
	a, _, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(gridSource), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))

	doc, err := afero.ReadFile(fsys, "wf.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "name: assembly")
	assert.Contains(t, string(doc), "id: x")
}

func TestRunEngineOverride(t *testing.T) {
	grid := `
workflow "wf" {}
job "x" {
  inputs   = ["A"]
  outputs  = ["B"]
  template = "cp $INPUT $OUTPUT"
}
`
	cfg := &Config{Command: "export", Target: "shell", Engine: "simple", Input: "grid.hcl"}
	a, out, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "grid.hcl", []byte(grid), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))
	assert.Contains(t, out.String(), "cp A B\n")
}

func TestRunLoadsSerializedDocuments(t *testing.T) {
	doc := `
name: saved
jobs:
  - id: x
    inputs: [A]
    outputs: [B]
    template: "cp {{INPUT}} {{OUTPUT}}"
    created_at: 1001
`
	cfg := &Config{Command: "export", Target: "shell", Input: "wf.yaml"}
	a, out, fsys := newTestApp(t, cfg)
	require.NoError(t, afero.WriteFile(fsys, "wf.yaml", []byte(doc), 0o644))

	require.NoError(t, a.Run(context.Background(), cfg))
	assert.Contains(t, out.String(), "# x\ncp A B\n")
}

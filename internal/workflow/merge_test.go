package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Run("workflows joined by a shared path union cleanly", func(t *testing.T) {
		a := newTestWorkflow(t, "left")
		_, err := a.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Path("B")})
		require.NoError(t, err)

		b := newTestWorkflow(t, "right")
		_, err = b.AddJob(JobSpec{ID: "y", Inputs: Path("B"), Outputs: Path("C")})
		require.NoError(t, err)

		merged, err := Merge(a, b)
		require.NoError(t, err)
		assert.Equal(t, "left+right", merged.Name())
		assert.Equal(t, 2, merged.NumberOfJobs())
		assert.Equal(t, 3, merged.NumberOfPaths())
		assert.Equal(t, []string{"x", "y"}, merged.ListJobs())
	})

	t.Run("identifier clash is rejected", func(t *testing.T) {
		a := newTestWorkflow(t, "left")
		_, err := a.AddJob(JobSpec{ID: "x", Outputs: Path("A")})
		require.NoError(t, err)

		b := newTestWorkflow(t, "right")
		_, err = b.AddJob(JobSpec{ID: "x", Outputs: Path("B")})
		require.NoError(t, err)

		_, err = Merge(a, b)
		assert.True(t, HasKind(err, KindDuplicateJob))
	})

	t.Run("double producer across workflows is rejected", func(t *testing.T) {
		a := newTestWorkflow(t, "left")
		_, err := a.AddJob(JobSpec{ID: "x", Outputs: Path("A")})
		require.NoError(t, err)

		b := newTestWorkflow(t, "right")
		_, err = b.AddJob(JobSpec{ID: "y", Outputs: Path("A")})
		require.NoError(t, err)

		_, err = Merge(a, b)
		assert.True(t, HasKind(err, KindDoubleProducer))
	})

	t.Run("cycle across workflows is rejected", func(t *testing.T) {
		a := newTestWorkflow(t, "left")
		_, err := a.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Path("B")})
		require.NoError(t, err)

		b := newTestWorkflow(t, "right")
		_, err = b.AddJob(JobSpec{ID: "y", Inputs: Path("B"), Outputs: Path("A")})
		require.NoError(t, err)

		_, err = Merge(a, b)
		assert.True(t, HasKind(err, KindCycle))
	})

	t.Run("workflow variables are combined", func(t *testing.T) {
		a := newTestWorkflow(t, "left")
		_, err := a.AddJob(JobSpec{ID: "x", Outputs: Path("A")})
		require.NoError(t, err)
		a.SetVar("release", "v4")
		a.SetVar("threads", 2)

		b := newTestWorkflow(t, "right")
		_, err = b.AddJob(JobSpec{ID: "y", Outputs: Path("B")})
		require.NoError(t, err)
		b.SetVar("threads", 8)

		merged, err := Merge(a, b)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"release": "v4", "threads": 8}, merged.Vars())
	})
}

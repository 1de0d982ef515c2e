package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickClock hands out strictly increasing timestamps one millisecond apart.
func tickClock() func() time.Time {
	t := time.UnixMilli(1000)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newTestWorkflow(t *testing.T, name string) *Workflow {
	t.Helper()
	w, err := New(name, WithClock(tickClock()))
	require.NoError(t, err)
	return w
}

func TestNew(t *testing.T) {
	t.Run("valid name", func(t *testing.T) {
		w, err := New("example-1")
		require.NoError(t, err)
		assert.Equal(t, "example-1", w.Name())
		assert.Equal(t, 0, w.NumberOfJobs())
		assert.Equal(t, 0, w.NumberOfPaths())
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err)
		assert.True(t, HasKind(err, KindInvalidName))
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, err := New("bad\nname")
		require.Error(t, err)
		assert.True(t, HasKind(err, KindInvalidName))
	})
}

func TestAddJob(t *testing.T) {
	t.Run("basic bipartite structure", func(t *testing.T) {
		w := newTestWorkflow(t, "example-1")

		x, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Paths("B", "C")})
		require.NoError(t, err)
		assert.Equal(t, "x", x)

		y, err := w.AddJob(JobSpec{ID: "y", Inputs: Paths("A", "C"), Outputs: Path("D")})
		require.NoError(t, err)
		assert.Equal(t, "y", y)

		assert.Equal(t, 2, w.NumberOfJobs())
		assert.Equal(t, 4, w.NumberOfPaths())
		assert.Equal(t, []string{"x", "y"}, w.ListJobs())
		assert.Equal(t, []string{"A", "B", "C", "D"}, w.ListPaths())
	})

	t.Run("identifiers are generated when omitted", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")

		id, err := w.AddJob(JobSpec{Outputs: Path("a")})
		require.NoError(t, err)
		assert.Equal(t, "job_0", id)

		id, err = w.AddJob(JobSpec{Outputs: Path("b")})
		require.NoError(t, err)
		assert.Equal(t, "job_1", id)

		// A hole left by an explicit identifier is filled first.
		_, err = w.AddJob(JobSpec{ID: "job_3", Outputs: Path("c")})
		require.NoError(t, err)
		id, err = w.AddJob(JobSpec{Outputs: Path("d")})
		require.NoError(t, err)
		assert.Equal(t, "job_2", id)
	})

	t.Run("paths are trimmed and preserved otherwise", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Outputs: Path("  Out/File.txt ")})
		require.NoError(t, err)
		assert.True(t, w.HasPath("Out/File.txt"))
		assert.True(t, w.HasPath(" Out/File.txt"))
		assert.False(t, w.HasPath("out/file.txt"))
	})

	t.Run("blank path is rejected", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Outputs: Path("   ")})
		assert.True(t, HasKind(err, KindInvalidName))
		assert.Equal(t, 0, w.NumberOfJobs())
	})

	t.Run("empty job is rejected", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x"})
		assert.True(t, HasKind(err, KindEmptyJob))
	})

	t.Run("duplicate identifier is rejected", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Outputs: Path("a")})
		require.NoError(t, err)
		_, err = w.AddJob(JobSpec{ID: "x", Outputs: Path("b")})
		assert.True(t, HasKind(err, KindDuplicateJob))
	})

	t.Run("duplicate path within a list is rejected", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Inputs: Paths("a", "a"), Outputs: Path("b")})
		assert.True(t, HasKind(err, KindDuplicatePath))
	})

	t.Run("path in both lists is rejected", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("a"), Outputs: Path("a")})
		assert.True(t, HasKind(err, KindDuplicatePath))
	})

	t.Run("second producer is rejected and leaves the workflow unchanged", func(t *testing.T) {
		w := newTestWorkflow(t, "example-1")
		_, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Paths("B", "C")})
		require.NoError(t, err)
		_, err = w.AddJob(JobSpec{ID: "y", Inputs: Paths("A", "C"), Outputs: Path("D")})
		require.NoError(t, err)

		_, err = w.AddJob(JobSpec{ID: "z", Inputs: Path("A"), Outputs: Path("B")})
		assert.True(t, HasKind(err, KindDoubleProducer))

		assert.Equal(t, 2, w.NumberOfJobs())
		assert.Equal(t, 4, w.NumberOfPaths())
		assert.False(t, w.HasJob("z"))
	})

	t.Run("cycle is rejected", func(t *testing.T) {
		w := newTestWorkflow(t, "example-1")
		_, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Paths("B", "C")})
		require.NoError(t, err)
		_, err = w.AddJob(JobSpec{ID: "y", Inputs: Paths("A", "C"), Outputs: Path("D")})
		require.NoError(t, err)

		_, err = w.AddJob(JobSpec{ID: "z", Inputs: Path("D"), Outputs: Path("A")})
		assert.True(t, HasKind(err, KindCycle))
		assert.Equal(t, 2, w.NumberOfJobs())
		assert.Equal(t, 4, w.NumberOfPaths())
	})

	t.Run("job metadata is carried", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{
			ID:       "x",
			Inputs:   Path("a"),
			Outputs:  Path("b"),
			Template: "cp $INPUT $OUTPUT",
			Data:     map[string]any{"threads": 4},
		})
		require.NoError(t, err)

		job, err := w.GetJob("x")
		require.NoError(t, err)
		assert.Equal(t, "cp $INPUT $OUTPUT", job.Template())
		assert.False(t, job.Abstract())
		assert.Equal(t, map[string]any{"threads": 4}, job.Data())
		assert.Equal(t, []string{"a"}, job.Inputs())
		assert.Equal(t, []string{"b"}, job.Outputs())
		assert.False(t, job.CreatedAt().IsZero())
	})
}

func TestRemoveJob(t *testing.T) {
	t.Run("unknown job", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		err := w.RemoveJob("nope")
		assert.True(t, HasKind(err, KindUnknownJob))
	})

	t.Run("orphaned paths are dropped, shared paths stay", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Path("B")})
		require.NoError(t, err)
		_, err = w.AddJob(JobSpec{ID: "y", Inputs: Path("B"), Outputs: Path("C")})
		require.NoError(t, err)

		require.NoError(t, w.RemoveJob("y"))

		assert.False(t, w.HasJob("y"))
		assert.True(t, w.HasPath("A"))
		assert.True(t, w.HasPath("B")) // still produced by x
		assert.False(t, w.HasPath("C"))
		assert.Equal(t, 2, w.NumberOfPaths())
	})

	t.Run("add then remove restores the registry", func(t *testing.T) {
		w := newTestWorkflow(t, "wf")
		_, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Path("B")})
		require.NoError(t, err)
		before := w.ListPaths()

		_, err = w.AddJob(JobSpec{ID: "y", Inputs: Path("B"), Outputs: Path("C")})
		require.NoError(t, err)
		require.NoError(t, w.RemoveJob("y"))

		assert.Equal(t, before, w.ListPaths())

		// The freed output can be produced again.
		_, err = w.AddJob(JobSpec{ID: "z", Inputs: Path("B"), Outputs: Path("C")})
		assert.NoError(t, err)
	})
}

func TestJobsOfPath(t *testing.T) {
	w := newTestWorkflow(t, "wf")
	_, err := w.AddJob(JobSpec{ID: "x", Inputs: Path("A"), Outputs: Path("B")})
	require.NoError(t, err)
	_, err = w.AddJob(JobSpec{ID: "y", Inputs: Path("B"), Outputs: Path("C")})
	require.NoError(t, err)
	_, err = w.AddJob(JobSpec{ID: "z", Inputs: Path("B"), Outputs: Path("D")})
	require.NoError(t, err)

	producers, consumers, ok := w.JobsOfPath("B")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, producers)
	assert.Equal(t, []string{"y", "z"}, consumers)

	_, _, ok = w.JobsOfPath("nope")
	assert.False(t, ok)
}

func TestVars(t *testing.T) {
	w := newTestWorkflow(t, "wf")
	w.SetVar("release", "v4")
	w.SetVars(map[string]any{"threads": 8})
	assert.Equal(t, map[string]any{"threads": 8}, w.Vars())

	// The copy is detached from the workflow state.
	vars := w.Vars()
	vars["threads"] = 1
	assert.Equal(t, map[string]any{"threads": 8}, w.Vars())
}
